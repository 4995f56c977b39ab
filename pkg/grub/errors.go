package grub

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/grubkit/grubkit/pkg/merging"
)

// ErrIsContainer indicates that the host is a container, where GRUB
// configuration has no effect.
var ErrIsContainer = errors.New("host is running in a container, GRUB configuration has no effect")

// A ValidationError rejects a caller-supplied owner identity, key, or value
// before any merge is attempted. Nothing on disk has been touched.
type ValidationError struct {
	// Key is the offending configuration key.
	Key string
	// Message describes what is wrong with the key or its value.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Key, e.Message)
}

// An ApplyError rejects an update or removal after validation. Either the
// proposed layer conflicts with other owners' layers, or the post-merge
// check of the resulting configuration failed. Nothing on disk has been
// changed by the failed call.
type ApplyError struct {
	// Conflicts lists the key-level disagreements with other owners, if the
	// merge itself failed.
	Conflicts []merging.Conflict
	// Err is the underlying failure of the post-merge configuration check, if
	// the merge succeeded but the result was rejected.
	Err error
}

func (e *ApplyError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("couldn't apply GRUB configuration: %v", e.Err)
	}
	descriptions := make([]string, 0, len(e.Conflicts))
	for _, conflict := range e.Conflicts {
		descriptions = append(descriptions, conflict.String())
	}
	return fmt.Sprintf(
		"couldn't apply GRUB configuration: %s", strings.Join(descriptions, "; "),
	)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
