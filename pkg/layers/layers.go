// Package layers addresses and enumerates per-owner GRUB configuration layer
// files inside a config directory.
//
// Each owner (e.g. a charm or a provisioning tool) holds exactly one layer
// file named `90-juju-<owner>`, and all layers are merged into the single
// authoritative file `95-juju-charm.cfg` in the same directory.
package layers

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/grubkit/grubkit/pkg/conffile"
)

const (
	// LayerPrefix is the filename prefix of per-owner layer files.
	LayerPrefix = "90-juju"
	// MergedFile is the name of the merged config file consumed by the GRUB
	// tooling.
	MergedFile = "95-juju-charm.cfg"
	// DefaultDirPath is where the GRUB tooling looks for config drop-ins.
	DefaultDirPath = "/etc/default/grub.d"
)

var layerPattern = LayerPrefix + "-*"

// A Dir is a handle on the config directory holding all layer files and the
// merged file. The directory is shared mutable state between independent
// processes, so a Dir caches nothing; every query reflects the live contents
// of the directory.
type Dir struct {
	path string
}

func NewDir(dirPath string) Dir {
	return Dir{path: dirPath}
}

func (d Dir) Path() string {
	return d.path
}

// MergedPath returns the path of the merged config file.
func (d Dir) MergedPath() string {
	return path.Join(d.path, MergedFile)
}

// PathFor returns the path of the named owner's layer file, whether or not
// that file currently exists.
func (d Dir) PathFor(owner string) string {
	return path.Join(d.path, LayerPrefix+"-"+owner)
}

// List returns the owners of all layer files currently in the directory, in
// lexicographic order. Unrelated files, including the merged file, are
// ignored. A missing directory yields an empty list.
func (d Dir) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.FromSlash(d.path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't list config directory %s", d.path)
	}

	owners := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := doublestar.Match(layerPattern, entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't match layer file pattern %s", layerPattern)
		}
		if !matched || strings.HasSuffix(entry.Name(), ".swap") {
			continue
		}
		owners = append(owners, strings.TrimPrefix(entry.Name(), LayerPrefix+"-"))
	}
	return owners, nil
}

// Load returns the named owner's current layer content. A missing layer file
// yields an empty mapping.
func (d Dir) Load(owner string) (map[string]string, error) {
	if err := CheckOwner(owner); err != nil {
		return nil, err
	}
	return conffile.Load(d.PathFor(owner))
}

// LoadAll returns the content of every layer currently in the directory,
// keyed by owner.
func (d Dir) LoadAll() (map[string]map[string]string, error) {
	owners, err := d.List()
	if err != nil {
		return nil, err
	}
	all := make(map[string]map[string]string, len(owners))
	for _, owner := range owners {
		layer, err := conffile.Load(d.PathFor(owner))
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't load layer of owner %s", owner)
		}
		all[owner] = layer
	}
	return all, nil
}

// Remove deletes the named owner's layer file. Removing an absent layer is a
// no-op.
func (d Dir) Remove(owner string) error {
	if err := CheckOwner(owner); err != nil {
		return err
	}
	err := os.Remove(filepath.FromSlash(d.PathFor(owner)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(err, "couldn't remove layer of owner %s", owner)
	}
	return nil
}

// CheckOwner rejects owner identities which would escape the config
// directory or collide with the layer filename scheme.
func CheckOwner(owner string) error {
	switch {
	case owner == "":
		return errors.New("owner identity must not be empty")
	case strings.ContainsAny(owner, "/\\"):
		return errors.Errorf("owner identity %q must not contain path separators", owner)
	case strings.HasPrefix(owner, "."):
		return errors.Errorf("owner identity %q must not start with a dot", owner)
	case strings.ContainsAny(owner, " \t\n"):
		return errors.Errorf("owner identity %q must not contain whitespace", owner)
	case strings.HasSuffix(owner, ".swap"):
		// such a layer file would be indistinguishable from a swap file and
		// filtered out of List
		return errors.Errorf("owner identity %q must not end with .swap", owner)
	}
	return nil
}
