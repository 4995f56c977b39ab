package grub

import (
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/grubkit/grubkit/pkg/fs"
)

// A Checker validates the on-disk GRUB configuration after the merged file
// has been committed. A failing check causes the facade to roll the commit
// back and surface an *ApplyError.
type Checker interface {
	Check() error
}

// A Runner runs a host command, discarding its output unless it fails.
type Runner interface {
	Run(name string, args ...string) error
}

// ExecRunner runs host commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "command %s failed: %s", name, string(output))
	}
	return nil
}

// MkconfigChecker validates the committed GRUB configuration by generating a
// throwaway boot config from it with grub-mkconfig, the same way update-grub
// would.
type MkconfigChecker struct {
	Runner Runner
}

func (c MkconfigChecker) Check() error {
	scratchDir, err := os.MkdirTemp("", "grubkit-check-")
	if err != nil {
		return errors.Wrap(err, "couldn't make scratch directory for grub-mkconfig check")
	}
	defer func() {
		_ = os.RemoveAll(scratchDir)
	}()
	output := filepath.Join(scratchDir, "grub.cfg")
	if err := c.Runner.Run("grub-mkconfig", "-o", output); err != nil {
		return errors.Wrap(err, "grub-mkconfig rejected the merged configuration")
	}
	return nil
}

// containerMarkers are the files written by systemd and container runtimes
// which identify a container environment.
var containerMarkers = []string{
	"/run/systemd/container",
	"/.dockerenv",
	"/run/.containerenv",
}

// IsContainer reports whether the host rooted at the provided path is a
// container. GRUB configuration has no effect in containers, so callers
// should refuse to manage layers there; see ErrIsContainer.
func IsContainer(root string) bool {
	for _, marker := range containerMarkers {
		if fs.FileExists(filepath.FromSlash(path.Join(root, marker))) {
			return true
		}
	}
	return false
}
