package layer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	fcli "github.com/grubkit/grubkit/internal/clients/cli"
	"github.com/grubkit/grubkit/pkg/conffile"
	"github.com/grubkit/grubkit/pkg/grub"
	"github.com/grubkit/grubkit/pkg/layers"
	"github.com/grubkit/grubkit/pkg/merging"
)

func configDir(c *cli.Context) layers.Dir {
	return layers.NewDir(c.String("config-dir"))
}

func ownerArg(c *cli.Context) (string, error) {
	owner := c.Args().First()
	if owner == "" {
		return "", errors.Errorf(
			"an owner identity must be specified, e.g. `grubkit layer %s my-charm`", c.Command.Name,
		)
	}
	return owner, nil
}

// grubkit layer set

func setAction(c *cli.Context) error {
	owner, err := ownerArg(c)
	if err != nil {
		return err
	}
	changes, err := parseChanges(c)
	if err != nil {
		return err
	}
	if !c.Bool("force") && grub.IsContainer("/") {
		return grub.ErrIsContainer
	}

	config, err := grub.New(configDir(c), owner)
	if err != nil {
		return err
	}
	if !c.Bool("no-check") {
		config.Checker = grub.MkconfigChecker{Runner: grub.ExecRunner{}}
	}
	if err := config.Update(changes); err != nil {
		return describeApplyError(err)
	}
	fmt.Printf("Committed layer of %s with %d settings:\n", owner, len(changes))
	return fcli.PrintYaml(os.Stdout, 1, changes)
}

// parseChanges reads the owner's proposed settings either from a yaml mapping
// file or from KEY=VALUE arguments following the owner identity.
func parseChanges(c *cli.Context) (map[string]string, error) {
	if fromFile := c.String("from-file"); fromFile != "" {
		if c.Args().Len() > 1 {
			return nil, errors.Errorf(
				"settings must be given either as arguments or with --from-file, not both",
			)
		}
		contents, err := os.ReadFile(filepath.FromSlash(fromFile))
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't read settings file %s", fromFile)
		}
		changes := map[string]string{}
		if err := yaml.Unmarshal(contents, &changes); err != nil {
			return nil, errors.Wrapf(err, "couldn't parse settings file %s as a yaml mapping", fromFile)
		}
		return changes, nil
	}

	changes := map[string]string{}
	for _, arg := range c.Args().Tail() {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, errors.Errorf("setting %q is not of the form KEY=VALUE", arg)
		}
		changes[key] = value
	}
	return changes, nil
}

// describeApplyError prints the per-key details of a conflict before handing
// the error back to the app.
func describeApplyError(err error) error {
	applyErr := &grub.ApplyError{}
	if !errors.As(err, &applyErr) || len(applyErr.Conflicts) == 0 {
		return err
	}
	fmt.Println("The proposed layer conflicts with other owners' layers:")
	iw := fcli.NewIndentedWriter(1, os.Stdout)
	for _, conflict := range applyErr.Conflicts {
		fmt.Fprintf(iw, "%s\n", conflict.String())
	}
	return errors.Errorf("%d conflicting keys, nothing was changed", len(applyErr.Conflicts))
}

// grubkit layer rm

func rmAction(c *cli.Context) error {
	owner, err := ownerArg(c)
	if err != nil {
		return err
	}
	config, err := grub.New(configDir(c), owner)
	if err != nil {
		return err
	}
	if !c.Bool("no-check") {
		config.Checker = grub.MkconfigChecker{Runner: grub.ExecRunner{}}
	}
	if err := config.Remove(); err != nil {
		return describeApplyError(err)
	}
	fmt.Printf("Removed layer of %s\n", owner)
	return nil
}

// grubkit layer show

func showAction(c *cli.Context) error {
	owner, err := ownerArg(c)
	if err != nil {
		return err
	}
	layer, err := configDir(c).Load(owner)
	if err != nil {
		return err
	}
	if len(layer) == 0 {
		fmt.Printf("Owner %s holds no layer.\n", owner)
		return nil
	}
	fmt.Printf("Layer of %s:\n", owner)
	return fcli.PrintYaml(os.Stdout, 1, layer)
}

// grubkit layer ls

func lsAction(c *cli.Context) error {
	owners, err := configDir(c).List()
	if err != nil {
		return err
	}
	for _, owner := range owners {
		fmt.Println(owner)
	}
	return nil
}

// grubkit layer merged

func mergedAction(c *cli.Context) error {
	merged, err := conffile.Load(configDir(c).MergedPath())
	if err != nil {
		return err
	}
	if len(merged) == 0 {
		fmt.Println("The merged config is empty.")
		return nil
	}
	return fcli.PrintYaml(os.Stdout, 0, merged)
}

// grubkit layer check

func checkAction(c *cli.Context) error {
	all, err := configDir(c).LoadAll()
	if err != nil {
		return err
	}
	merged, conflicts := merging.Merge(all)
	if len(conflicts) > 0 {
		fmt.Println("The current layers do not merge cleanly:")
		iw := fcli.NewIndentedWriter(1, os.Stdout)
		for _, conflict := range conflicts {
			fmt.Fprintf(iw, "%s\n", conflict.String())
		}
		return errors.Errorf("%d conflicting keys", len(conflicts))
	}
	fmt.Printf("The %d current layers merge cleanly into %d settings.\n", len(all), len(merged))
	return nil
}

// grubkit layer keys

func keysAction(_ *cli.Context) error {
	for _, key := range grub.RecognizedKeys() {
		fmt.Println(key)
	}
	return nil
}
