package streamprio

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// descendingSet maintains a small set of distinct keys in descending
// sorted order, used by slotQueue to walk weight buckets heaviest
// first without re-sorting on every pick. Insert and Remove are
// O(n) (shifting a slice) rather than O(log n), which is the right
// trade for the sizes involved: RFC 7540 bounds weight to [1,256], so
// a queue never holds more than 256 distinct bucket weights.
type descendingSet[E constraints.Ordered] struct {
	s []E
}

// search returns the index of value, and whether it was found, using
// descending order (the inverse of sort.Search's usual ascending
// convention — adapted here rather than sorting ascending and reading
// the slice backwards, since every caller below wants the heaviest
// key first).
func (x *descendingSet[E]) search(value E) (int, bool) {
	i := sort.Search(len(x.s), func(i int) bool {
		return x.s[i] <= value
	})
	return i, i < len(x.s) && x.s[i] == value
}

// Insert adds value to the set if not already present.
func (x *descendingSet[E]) Insert(value E) {
	i, found := x.search(value)
	if found {
		return
	}
	x.s = append(x.s, value)
	copy(x.s[i+1:], x.s[i:])
	x.s[i] = value
}

// Remove deletes value from the set if present.
func (x *descendingSet[E]) Remove(value E) {
	i, found := x.search(value)
	if !found {
		return
	}
	x.s = append(x.s[:i], x.s[i+1:]...)
}

// Len returns the number of distinct keys currently in the set.
func (x *descendingSet[E]) Len() int { return len(x.s) }

// At returns the i'th heaviest key.
func (x *descendingSet[E]) At(i int) E { return x.s[i] }
