// Package conffile reads and writes flat KEY=VALUE configuration files in the
// format consumed by the GRUB tooling under /etc/default/grub.d.
package conffile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// A ParseError reports a line which is not a KEY=VALUE assignment, a blank
// line, or a comment.
type ParseError struct {
	// Path of the file which failed to parse
	Path string
	// Line number of the offending line, starting from 1
	Line int
	// Text of the offending line
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: not a KEY=VALUE assignment: %q", e.Path, e.Line, e.Text)
}

// Load parses the KEY=VALUE file at the provided path. A missing file is not
// an error; it yields an empty mapping. Blank lines and lines starting with
// `#` are dropped. Values are kept as opaque text, exactly as written after
// the first `=`.
func Load(path string) (map[string]string, error) {
	bytes, err := os.ReadFile(filepath.FromSlash(path))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't read config file %s", path)
	}
	return Parse(path, bytes)
}

// Parse parses KEY=VALUE file contents. The path is only used to identify the
// source in any returned *ParseError.
func Parse(path string, contents []byte) (map[string]string, error) {
	config := make(map[string]string)
	for i, line := range strings.Split(string(contents), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, value, found := strings.Cut(trimmed, "=")
		if !found || key == "" || strings.ContainsAny(key, " \t") {
			return nil, &ParseError{Path: path, Line: i + 1, Text: line}
		}
		config[key] = value
	}
	return config, nil
}

// Save serializes the mapping as KEY=VALUE lines and commits it to the
// provided path. Keys are written in lexicographic order, so repeated saves
// of the same mapping are byte-identical and operator diffs of the output
// stay stable. The write goes to a swap file in the same directory which is
// then renamed over the target, so a concurrent reader never observes a
// partially-written file.
// Warning: on non-Unix platforms, the rename is not entirely atomic!
func Save(path string, config map[string]string) error {
	keys := make([]string, 0, len(config))
	for key := range config {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	builder := &strings.Builder{}
	for _, key := range keys {
		fmt.Fprintf(builder, "%s=%s\n", key, config[key])
	}

	swapPath := filepath.FromSlash(path + ".swap")
	const perm = 0o644 // owner rw, group r, public r
	if err := os.WriteFile(swapPath, []byte(builder.String()), perm); err != nil {
		return errors.Wrapf(err, "couldn't save config to swap file %s", swapPath)
	}
	if err := os.Rename(swapPath, filepath.FromSlash(path)); err != nil {
		return errors.Wrapf(err, "couldn't commit config update from %s to %s", swapPath, path)
	}
	return nil
}
