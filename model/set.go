package model

import "github.com/samber/lo"

type Set[T comparable] map[T]struct{}

func NewSet[T comparable](items ...T) Set[T] {
	set := make(Set[T], len(items))
	for _, item := range items {
		set.Add(item)
	}
	return set
}

func ToSet[T comparable](items []T) Set[T] {
	return NewSet(items...)
}

func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

func (s Set[T]) Remove(item T) {
	delete(s, item)
}

func (s Set[T]) Contains(item T) bool {
	_, ok := s[item]
	return ok
}

func (s Set[T]) Size() int {
	return len(s)
}

// ToSlice returns the items in no particular order.
func (s Set[T]) ToSlice() []T {
	return lo.Keys(s)
}
