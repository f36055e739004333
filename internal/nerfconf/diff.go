package nerfconf

import (
	"github.com/zclconf/go-cty/cty"
)

// ChangeKind classifies one entry of a record diff.
type ChangeKind int

const (
	// Changed means the key exists in both records with different values.
	Changed ChangeKind = iota
	// OnlyInA means the key exists only in the first record.
	OnlyInA
	// OnlyInB means the key exists only in the second record.
	OnlyInB
)

// Change is a single difference between two records.
type Change struct {
	Kind ChangeKind
	Key  string
	// A and B are the values in the respective records; cty.NilVal when the
	// key is absent on that side.
	A cty.Value
	B cty.Value
}

// Diff compares two records. Changed and A-only keys appear in a's order,
// followed by B-only keys in b's order, so output is stable for the same
// inputs.
func Diff(a, b *Record) []Change {
	var changes []Change

	for _, e := range a.entries {
		bVal, ok := b.Get(e.Key)
		if !ok {
			changes = append(changes, Change{Kind: OnlyInA, Key: e.Key, A: e.Value, B: cty.NilVal})
			continue
		}
		if !e.Value.RawEquals(bVal) {
			changes = append(changes, Change{Kind: Changed, Key: e.Key, A: e.Value, B: bVal})
		}
	}

	for _, e := range b.entries {
		if !a.Has(e.Key) {
			changes = append(changes, Change{Kind: OnlyInB, Key: e.Key, A: cty.NilVal, B: e.Value})
		}
	}

	return changes
}
