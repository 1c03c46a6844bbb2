package rap

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Set is an unordered collection of distinct values.
// The zero Set is empty and ready to use after the first [Set.Add].
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding items.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, v := range items {
		s[v] = struct{}{}
	}

	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set[T]) Add(v T) bool {
	if *s == nil {
		*s = make(Set[T])
	}

	if _, ok := (*s)[v]; ok {
		return false
	}

	(*s)[v] = struct{}{}

	return true
}

// Has reports whether v is in s.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]

	return ok
}

// Len returns the number of values in s.
func (s Set[T]) Len() int { return len(s) }

// All returns an iterator over the values of s in no particular order.
func (s Set[T]) All() iter.Seq[T] { return maps.Keys(s) }

// Union returns a new set holding the values of s and every other set.
func (s Set[T]) Union(other ...Set[T]) Set[T] {
	n := len(s)
	for _, o := range other {
		n += len(o)
	}

	out := make(Set[T], n)
	maps.Copy(out, s)

	for _, o := range other {
		maps.Copy(out, o)
	}

	return out
}

// Sorted returns the values of s ordered by compare.
func (s Set[T]) Sorted(compare func(a, b T) int) []T {
	return slices.SortedFunc(maps.Keys(s), compare)
}

// SortedOrdered returns the values of an ordered set in ascending order.
func SortedOrdered[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}
