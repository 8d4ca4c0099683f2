// Package confirmation models pending marketplace confirmations and parses
// them out of the mobile confirmation page.
package confirmation

import (
	"cmp"
	"fmt"
	"slices"
)

// Confirmation identifies a single pending action. Two confirmations are
// equal when both ID and Key match, so the type can be used directly as a
// map key.
type Confirmation struct {
	ID  uint32
	Key uint64
}

// New returns a Confirmation. It panics if id or key is zero; callers parsing
// untrusted input must validate before constructing.
func New(id uint32, key uint64) Confirmation {
	if id == 0 {
		panic("confirmation: id must not be zero")
	}
	if key == 0 {
		panic("confirmation: key must not be zero")
	}
	return Confirmation{ID: id, Key: key}
}

// IsZero reports whether c is the zero value, which never identifies a real
// confirmation.
func (c Confirmation) IsZero() bool {
	return c.ID == 0 || c.Key == 0
}

func (c Confirmation) String() string {
	return fmt.Sprintf("confirmation(%d/%d)", c.ID, c.Key)
}

// Set is an unordered collection of unique confirmations.
type Set map[Confirmation]struct{}

// NewSet returns a Set holding cs. Duplicates collapse.
func NewSet(cs ...Confirmation) Set {
	s := make(Set, len(cs))
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

// Add inserts c and reports whether it was not already present.
func (s Set) Add(c Confirmation) bool {
	if _, ok := s[c]; ok {
		return false
	}
	s[c] = struct{}{}
	return true
}

// Contains reports whether c is in the set.
func (s Set) Contains(c Confirmation) bool {
	_, ok := s[c]
	return ok
}

// Len returns the number of confirmations in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the members ordered by ID, then Key.
func (s Set) Sorted() []Confirmation {
	out := make([]Confirmation, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Confirmation) int {
		if n := cmp.Compare(a.ID, b.ID); n != 0 {
			return n
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return out
}

// Details describes the contents of a single confirmation as returned by the
// remote service. It is passed through without interpretation.
type Details struct {
	Success bool   `json:"success"`
	HTML    string `json:"html"`
}
