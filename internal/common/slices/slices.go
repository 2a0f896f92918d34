package slices

import (
	goslices "golang.org/x/exp/slices"
)

// Map returns a new slice obtained by applying fn to every element of s.
func Map[S ~[]E, E any, V any](s S, fn func(E) V) []V {
	if s == nil {
		return nil
	}
	rv := make([]V, len(s))
	for i, v := range s {
		rv[i] = fn(v)
	}
	return rv
}

// Filter returns a new slice composed of the elements of s for which predicate returns true.
// Ordering is preserved.
func Filter[S ~[]E, E any](s S, predicate func(e E) bool) S {
	if s == nil {
		return nil
	}
	rv := make(S, 0)
	for _, e := range s {
		if predicate(e) {
			rv = append(rv, e)
		}
	}
	return rv
}

// Unique returns a copy of s with duplicate elements removed, keeping only the first occurrence.
func Unique[S ~[]E, E comparable](s S) S {
	if s == nil {
		return nil
	}
	rv := make(S, 0)
	seen := make(map[E]bool)
	for _, v := range s {
		if !seen[v] {
			rv = append(rv, v)
			seen[v] = true
		}
	}
	return rv
}

// Subtract returns a new slice with the elements of list that don't appear in toRemove.
func Subtract[T comparable](list []T, toRemove []T) []T {
	if list == nil {
		return nil
	}
	rv := make([]T, 0, len(list))
	for _, v := range list {
		if !goslices.Contains(toRemove, v) {
			rv = append(rv, v)
		}
	}
	return rv
}

// Range returns [0, 1, ..., n-1].
func Range(n int) []int {
	rv := make([]int, n)
	for i := range rv {
		rv[i] = i
	}
	return rv
}
