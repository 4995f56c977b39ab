// Package merging combines per-owner configuration layers into a single
// conflict-free mapping.
package merging

import (
	"fmt"
	"slices"
)

// A Conflict is a report of two owners holding different values for the same
// configuration key. HeldBy is the owner whose layer first claimed the key in
// owner-lexicographic merge order; ProposedBy is the later owner disagreeing
// with it. The ordering only affects which owner is reported as holding the
// key; any disagreement fails the merge regardless of order.
type Conflict struct {
	Key           string
	HeldBy        string
	HeldValue     string
	ProposedBy    string
	ProposedValue string
}

func (c Conflict) String() string {
	return fmt.Sprintf(
		"conflicting values for %s: %s holds %q, %s proposes %q",
		c.Key, c.HeldBy, c.HeldValue, c.ProposedBy, c.ProposedValue,
	)
}

// Merge combines the provided layers, keyed by owner, into a single mapping.
// Owners are iterated in lexicographic order and keys within each layer in
// lexicographic order, so the reported conflicts are deterministic. Owners
// agreeing on a key's value may share it freely; any disagreement is a
// conflict. If there are any conflicts, the merged mapping is nil; a merge
// never silently drops or overwrites anyone's value.
func Merge(layers map[string]map[string]string) (map[string]string, []Conflict) {
	owners := make([]string, 0, len(layers))
	for owner := range layers {
		owners = append(owners, owner)
	}
	slices.Sort(owners)

	merged := make(map[string]string)
	heldBy := make(map[string]string)
	var conflicts []Conflict
	for _, owner := range owners {
		layer := layers[owner]
		keys := make([]string, 0, len(layer))
		for key := range layer {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		for _, key := range keys {
			value := layer[key]
			held, ok := merged[key]
			if !ok {
				merged[key] = value
				heldBy[key] = owner
				continue
			}
			if held != value {
				conflicts = append(conflicts, Conflict{
					Key:           key,
					HeldBy:        heldBy[key],
					HeldValue:     held,
					ProposedBy:    owner,
					ProposedValue: value,
				})
			}
		}
	}
	if len(conflicts) > 0 {
		return nil, conflicts
	}
	return merged, nil
}
