// Package fs provides helpers for checking and preparing filesystem paths.
package fs

import (
	"os"
)

func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		return true
	}
	return false
}

func EnsureExists(dirPath string) error {
	const perm = 0o755 // owner rwx, group rx, public rx
	return os.MkdirAll(dirPath, perm)
}
