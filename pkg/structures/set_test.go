package structures

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var setTests = map[string]struct {
	add    []string
	has    map[string]bool
	sorted []string
}{
	"empty": {
		has: map[string]bool{"a": false},
	},
	"single": {
		add:    []string{"a"},
		has:    map[string]bool{"a": true, "b": false},
		sorted: []string{"a"},
	},
	"duplicates": {
		add:    []string{"b", "a", "b"},
		has:    map[string]bool{"a": true, "b": true},
		sorted: []string{"a", "b"},
	},
	"unsorted insertion": {
		add:    []string{"c", "a", "b"},
		sorted: []string{"a", "b", "c"},
	},
}

func TestSet(t *testing.T) {
	t.Parallel()
	for name, test := range setTests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := NewSet(test.add...)
			for n, want := range test.has {
				if got := s.Has(n); got != want {
					t.Errorf("Has(%q): got %t, want %t", n, got, want)
				}
			}
			if got, want := s.Sorted(), test.sorted; !cmp.Equal(
				got, want, cmpopts.EquateEmpty(),
			) {
				t.Errorf("diff (-want +got):\n%s", cmp.Diff(want, got, cmpopts.EquateEmpty()))
			}
		})
	}
}
