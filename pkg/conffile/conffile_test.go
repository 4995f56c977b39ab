package conffile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
)

var parseTests = map[string]struct {
	contents string
	out      map[string]string
	errLine  int
}{
	"empty": {
		contents: "",
		out:      map[string]string{},
	},
	"single assignment": {
		contents: "GRUB_TIMEOUT=0\n",
		out:      map[string]string{"GRUB_TIMEOUT": "0"},
	},
	"no trailing newline": {
		contents: "GRUB_TIMEOUT=0",
		out:      map[string]string{"GRUB_TIMEOUT": "0"},
	},
	"value with shell syntax": {
		contents: "GRUB_CMDLINE_LINUX_DEFAULT=$GRUB_CMDLINE_LINUX_DEFAULT hugepagesz=1G\n",
		out: map[string]string{
			"GRUB_CMDLINE_LINUX_DEFAULT": "$GRUB_CMDLINE_LINUX_DEFAULT hugepagesz=1G",
		},
	},
	"empty value": {
		contents: "GRUB_TERMINAL=\n",
		out:      map[string]string{"GRUB_TERMINAL": ""},
	},
	"comments and blank lines dropped": {
		contents: "# managed file\n\nGRUB_TIMEOUT=0\n\n# trailer\n",
		out:      map[string]string{"GRUB_TIMEOUT": "0"},
	},
	"surrounding whitespace tolerated": {
		contents: "  GRUB_TIMEOUT=0\n",
		out:      map[string]string{"GRUB_TIMEOUT": "0"},
	},
	"last assignment wins": {
		contents: "GRUB_TIMEOUT=0\nGRUB_TIMEOUT=1\n",
		out:      map[string]string{"GRUB_TIMEOUT": "1"},
	},
	"missing separator": {
		contents: "GRUB_TIMEOUT=0\nGRUB_DEFAULT\n",
		errLine:  2,
	},
	"missing key": {
		contents: "=0\n",
		errLine:  1,
	},
	"key with spaces": {
		contents: "GRUB TIMEOUT=0\n",
		errLine:  1,
	},
}

func TestParse(t *testing.T) {
	t.Parallel()
	for name, test := range parseTests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse("test.cfg", []byte(test.contents))
			if test.errLine > 0 {
				parseErr := &ParseError{}
				if !errors.As(err, &parseErr) {
					t.Fatalf("got error %v, want *ParseError", err)
				}
				if parseErr.Line != test.errLine {
					t.Errorf("got error on line %d, want line %d", parseErr.Line, test.errLine)
				}
				return
			}
			if err != nil {
				t.Fatalf("couldn't parse contents: %v", err)
			}
			if want := test.out; !cmp.Equal(got, want, cmpopts.EquateEmpty()) {
				t.Errorf("diff (-want +got):\n%s", cmp.Diff(want, got, cmpopts.EquateEmpty()))
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	config, err := Load(filepath.Join(t.TempDir(), "nonexistent.cfg"))
	if err != nil {
		t.Fatalf("couldn't load missing file: %v", err)
	}
	if len(config) != 0 {
		t.Errorf("got %v, want empty mapping", config)
	}
}

func TestSaveDeterministic(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "layer.cfg")
	config := map[string]string{
		"GRUB_TIMEOUT":               "0",
		"GRUB_CMDLINE_LINUX_DEFAULT": "$GRUB_CMDLINE_LINUX_DEFAULT hugepagesz=1G",
		"GRUB_DEFAULT":               "0",
	}
	if err := Save(path, config); err != nil {
		t.Fatalf("couldn't save config: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("couldn't read saved file: %v", err)
	}
	want := "GRUB_CMDLINE_LINUX_DEFAULT=$GRUB_CMDLINE_LINUX_DEFAULT hugepagesz=1G\n" +
		"GRUB_DEFAULT=0\n" +
		"GRUB_TIMEOUT=0\n"
	if got := string(contents); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	// a second save must be byte-identical
	if err := Save(path, config); err != nil {
		t.Fatalf("couldn't save config again: %v", err)
	}
	again, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("couldn't re-read saved file: %v", err)
	}
	if string(again) != want {
		t.Errorf("repeated save changed file contents:\n%s", string(again))
	}
}

func TestSaveLeavesNoSwapFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "layer.cfg")
	if err := Save(path, map[string]string{"GRUB_TIMEOUT": "0"}); err != nil {
		t.Fatalf("couldn't save config: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("couldn't list directory: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "layer.cfg" {
			t.Errorf("unexpected leftover file %s", entry.Name())
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "layer.cfg")
	config := map[string]string{
		"GRUB_TIMEOUT":               "0",
		"GRUB_CMDLINE_LINUX_DEFAULT": "$GRUB_CMDLINE_LINUX_DEFAULT hugepages=64 hugepagesz=1G",
		"GRUB_TERMINAL":              "",
	}
	if err := Save(path, config); err != nil {
		t.Fatalf("couldn't save config: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("couldn't load config: %v", err)
	}
	if !cmp.Equal(loaded, config) {
		t.Errorf("diff (-want +got):\n%s", cmp.Diff(config, loaded))
	}
}
