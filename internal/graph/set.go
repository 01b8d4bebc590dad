package graph

// Set is an insertion-ordered set. Iteration order is the order in which
// members were first added, which keeps report listings stable between runs.
type Set[T comparable] struct {
	index map[T]struct{}
	items []T
}

// NewSet creates a set holding the given members.
func NewSet[T comparable](members ...T) *Set[T] {
	s := &Set[T]{index: make(map[T]struct{}, len(members))}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Add inserts v and reports whether it was not already present.
func (s *Set[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports whether v is a member.
func (s *Set[T]) Has(v T) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[v]
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Items returns the members in insertion order. The slice must not be modified.
func (s *Set[T]) Items() []T {
	if s == nil {
		return nil
	}
	return s.items
}

// Union adds every member of other to s.
func (s *Set[T]) Union(other *Set[T]) {
	for _, v := range other.Items() {
		s.Add(v)
	}
}

// Every reports whether pred holds for all members. It is true for an empty set.
func (s *Set[T]) Every(pred func(T) bool) bool {
	for _, v := range s.Items() {
		if !pred(v) {
			return false
		}
	}
	return true
}

// Any reports whether pred holds for at least one member.
func (s *Set[T]) Any(pred func(T) bool) bool {
	for _, v := range s.Items() {
		if pred(v) {
			return true
		}
	}
	return false
}

// SubsetOf reports whether every member of s is also in other.
func (s *Set[T]) SubsetOf(other *Set[T]) bool {
	return s.Every(other.Has)
}

// Intersects reports whether s and other share a member.
func (s *Set[T]) Intersects(other *Set[T]) bool {
	return s.Any(other.Has)
}
