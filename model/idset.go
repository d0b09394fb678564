package model

import "sort"

// IDSet is a set of user ids. A given id is present at most once.
// The zero value is an empty set ready for Add.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids, collapsing duplicates.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id and reports whether it was absent.
func (s *IDSet) Add(id string) bool {
	if *s == nil {
		*s = IDSet{}
	}
	if _, ok := (*s)[id]; ok {
		return false
	}
	(*s)[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s IDSet) Remove(id string) bool {
	if _, ok := s[id]; !ok {
		return false
	}
	delete(s, id)
	return true
}

// Set forces membership of id to member.
func (s *IDSet) Set(id string, member bool) {
	if member {
		s.Add(id)
		return
	}
	s.Remove(id)
}

// Len returns the number of members.
func (s IDSet) Len() int { return len(s) }

// Slice returns the members sorted.
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clone copies the set. A nil set clones to nil.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}
