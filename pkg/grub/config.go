// Package grub manages Linux kernel boot configuration contributed by
// multiple independent owners. Each owner holds one layer of KEY=VALUE
// settings in its own file, and all layers are merged into the single
// authoritative drop-in file consumed by the GRUB tooling. An update only
// commits if the merge is conflict-free, so no owner's setting is ever
// silently overwritten by another's.
package grub

import (
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"

	"github.com/grubkit/grubkit/pkg/conffile"
	ffs "github.com/grubkit/grubkit/pkg/fs"
	"github.com/grubkit/grubkit/pkg/layers"
	"github.com/grubkit/grubkit/pkg/merging"
)

// A Config is one owner's handle on its GRUB configuration layer.
// Constructing a Config creates no files; the layer file appears on the
// first successful Update.
type Config struct {
	// Checker, if non-nil, validates the full on-disk configuration after
	// each commit; a failing check rolls the commit back and surfaces as an
	// *ApplyError.
	Checker Checker

	dir     layers.Dir
	owner   string
	content map[string]string
}

func New(dir layers.Dir, owner string) (*Config, error) {
	if err := layers.CheckOwner(owner); err != nil {
		return nil, &ValidationError{Key: owner, Message: err.Error()}
	}
	content, err := dir.Load(owner)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load layer of owner %s", owner)
	}
	return &Config{dir: dir, owner: owner, content: content}, nil
}

func (c *Config) Owner() string {
	return c.owner
}

// Path returns the path of this owner's layer file, whether or not the file
// currently exists.
func (c *Config) Path() string {
	return c.dir.PathFor(c.owner)
}

// Get returns the value this owner's layer currently holds for the key.
func (c *Config) Get(key string) (string, bool) {
	value, ok := c.content[key]
	return value, ok
}

// Keys returns the keys of this owner's layer in lexicographic order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.content))
	for key := range c.content {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Content returns a copy of this owner's current layer.
func (c *Config) Content() map[string]string {
	return maps.Clone(c.content)
}

// Update merges the changes over this owner's current layer and re-merges
// all layers into the merged file. Keys already in the layer keep their
// values unless changes provides new ones; a key only leaves the layer when
// the whole layer is removed. On any failure (an unrecognized key, a
// malformed value, a conflict with another owner's layer, or a rejected
// post-commit check) nothing is changed on disk and the previous layer
// content remains in force.
func (c *Config) Update(changes map[string]string) error {
	if err := CheckChanges(changes); err != nil {
		return err
	}
	proposed := maps.Clone(c.content)
	if proposed == nil {
		proposed = map[string]string{}
	}
	maps.Copy(proposed, changes)

	all, err := c.dir.LoadAll()
	if err != nil {
		return err
	}
	// the pending content participates in the merge in place of whatever this
	// owner's layer holds on disk
	all[c.owner] = proposed
	merged, conflicts := merging.Merge(all)
	if len(conflicts) > 0 {
		return &ApplyError{Conflicts: conflicts}
	}

	if err := c.commit(proposed, merged); err != nil {
		return err
	}
	c.content = proposed
	return nil
}

// Remove deletes this owner's layer and re-merges the remaining layers into
// the merged file. Removing an absent layer is a no-op, not an error.
func (c *Config) Remove() error {
	all, err := c.dir.LoadAll()
	if err != nil {
		return err
	}
	delete(all, c.owner)
	merged, conflicts := merging.Merge(all)
	if len(conflicts) > 0 {
		// the remaining layers were already inconsistent before this call
		return &ApplyError{Conflicts: conflicts}
	}

	if err := c.commit(nil, merged); err != nil {
		return err
	}
	c.content = map[string]string{}
	return nil
}

// commit writes this owner's layer (or removes it, if layer is nil) and the
// merged file, then runs the post-commit check if one is configured. Each
// file write is individually atomic, but there is no cross-file transaction:
// a concurrent reader may briefly observe the new layer file alongside the
// old merged file. A failing check restores both files to their prior bytes.
func (c *Config) commit(layer, merged map[string]string) error {
	if err := ffs.EnsureExists(filepath.FromSlash(c.dir.Path())); err != nil {
		return errors.Wrapf(err, "couldn't make config directory %s", c.dir.Path())
	}
	layerSnapshot, err := takeSnapshot(c.Path())
	if err != nil {
		return err
	}
	mergedSnapshot, err := takeSnapshot(c.dir.MergedPath())
	if err != nil {
		return err
	}

	if layer == nil {
		if err := c.dir.Remove(c.owner); err != nil {
			return err
		}
	} else if err := conffile.Save(c.Path(), layer); err != nil {
		return errors.Wrapf(err, "couldn't save layer of owner %s", c.owner)
	}
	if err := conffile.Save(c.dir.MergedPath(), merged); err != nil {
		return errors.Wrap(err, "couldn't save merged config")
	}

	if c.Checker == nil {
		return nil
	}
	if err := c.Checker.Check(); err != nil {
		if restoreErr := layerSnapshot.restore(); restoreErr != nil {
			return errors.Wrapf(restoreErr, "couldn't roll back layer after failed check: %v", err)
		}
		if restoreErr := mergedSnapshot.restore(); restoreErr != nil {
			return errors.Wrapf(
				restoreErr, "couldn't roll back merged config after failed check: %v", err,
			)
		}
		return &ApplyError{Err: err}
	}
	return nil
}

// snapshot

type snapshot struct {
	path     string
	contents []byte
	exists   bool
}

func takeSnapshot(path string) (snapshot, error) {
	contents, err := os.ReadFile(filepath.FromSlash(path))
	if errors.Is(err, fs.ErrNotExist) {
		return snapshot{path: path}, nil
	}
	if err != nil {
		return snapshot{}, errors.Wrapf(err, "couldn't snapshot %s for rollback", path)
	}
	return snapshot{path: path, contents: contents, exists: true}, nil
}

func (s snapshot) restore() error {
	if !s.exists {
		err := os.Remove(filepath.FromSlash(s.path))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "couldn't remove %s", s.path)
		}
		return nil
	}
	const perm = 0o644 // owner rw, group r, public r
	return errors.Wrapf(
		os.WriteFile(filepath.FromSlash(s.path), s.contents, perm),
		"couldn't restore %s", s.path,
	)
}
