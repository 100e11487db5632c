package precompute

import (
	"fmt"
	"maps"
)

// Reference maps an order to its known count of distinct polycubes under
// rotation.
type Reference map[int]uint64

// knownCounts is OEIS A000162, starting at order 1.
var knownCounts = []uint64{
	1, 1, 2, 8, 29, 166, 1023, 6922, 48311, 346543, 2522522,
	18598427, 138462649, 1039496297, 7859514470, 59795121480,
}

// KnownCounts returns the built-in reference table.
func KnownCounts() Reference {
	ref := make(Reference, len(knownCounts))
	for i, n := range knownCounts {
		ref[i+1] = n
	}
	return ref
}

// Merge returns a copy of r with every entry of other added or replaced.
func (r Reference) Merge(other Reference) Reference {
	out := maps.Clone(r)
	if out == nil {
		out = make(Reference, len(other))
	}
	maps.Copy(out, other)
	return out
}

// MismatchError reports a level whose size disagrees with the reference
// table. It always indicates a bug in expansion or deduplication.
type MismatchError struct {
	Order int
	Got   int
	Want  uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("order %d: generated %d cubes but the reference count is %d", e.Order, e.Got, e.Want)
}

// check compares got against the reference count for order, if one exists.
func (r Reference) check(order, got int) error {
	want, ok := r[order]
	if !ok || want == uint64(got) {
		return nil
	}
	return &MismatchError{Order: order, Got: got, Want: want}
}
