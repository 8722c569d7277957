package pareto

import (
	"journeyplanner.org/internal/criteria"
)

const initialCapacity = 2

// Builder accumulates criteria, discarding dominated ones as it goes. Members are kept
// sorted by packed value, so a frontier built from the same tuples in any order is the same.
//
// All members of one builder must agree on the presence of a departure time; mixing them
// panics.
type Builder struct {
	entries []criteria.Criteria
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// FromFront returns a builder holding the members of f.
func FromFront(f Front) *Builder {
	b := &Builder{entries: make([]criteria.Criteria, len(f.packed), max(len(f.packed), initialCapacity))}
	copy(b.entries, f.packed)
	return b
}

// Clone returns an independent copy of b.
func (b *Builder) Clone() *Builder {
	c := &Builder{entries: make([]criteria.Criteria, len(b.entries), cap(b.entries))}
	copy(c.entries, b.entries)
	return c
}

func (b *Builder) Size() int {
	return len(b.entries)
}

func (b *Builder) IsEmpty() bool {
	return len(b.entries) == 0
}

// Clear removes every member and keeps the storage.
func (b *Builder) Clear() {
	b.entries = b.entries[:0]
}

func withoutPayload(c criteria.Criteria) criteria.Criteria {
	return c.WithPayload(0)
}

// Add inserts v unless a member dominates or equals it, and removes the members v
// dominates. It reports whether v was inserted.
func (b *Builder) Add(v criteria.Criteria) bool {
	key := withoutPayload(v)

	at := 0
	for ; at < len(b.entries); at++ {
		e := withoutPayload(b.entries[at])
		if e > key {
			break
		}
		if criteria.DominatesOrIsEqual(e, key) {
			return false
		}
	}

	kept := at
	for i := at; i < len(b.entries); i++ {
		if !criteria.DominatesOrIsEqual(key, b.entries[i]) {
			b.entries[kept] = b.entries[i]
			kept++
		}
	}
	b.entries = b.entries[:kept]

	if len(b.entries) == cap(b.entries) {
		grown := make([]criteria.Criteria, len(b.entries), max(2*cap(b.entries), initialCapacity))
		copy(grown, b.entries)
		b.entries = grown
	}
	b.entries = b.entries[:kept+1]
	copy(b.entries[at+1:], b.entries[at:kept])
	b.entries[at] = v
	return true
}

// AddAll inserts every member of other.
func (b *Builder) AddAll(other *Builder) {
	for _, c := range other.entries {
		b.Add(c)
	}
}

// AddFront inserts every member of f.
func (b *Builder) AddFront(f Front) {
	for _, c := range f.packed {
		b.Add(c)
	}
}

// FullyDominates reports whether every member of other, with its departure time replaced
// by depMins, is dominated or equalled by a member of b.
func (b *Builder) FullyDominates(other *Builder, depMins int) bool {
	for _, t := range other.entries {
		if !b.dominates(withoutPayload(t).WithDepMins(depMins)) {
			return false
		}
	}
	return true
}

func (b *Builder) dominates(key criteria.Criteria) bool {
	for _, e := range b.entries {
		e = withoutPayload(e)
		if e > key {
			return false
		}
		if criteria.DominatesOrIsEqual(e, key) {
			return true
		}
	}
	return false
}

// ForEach calls fn for every member in order. fn must not modify b.
func (b *Builder) ForEach(fn func(criteria.Criteria)) {
	for _, c := range b.entries {
		fn(c)
	}
}

// Build returns the frontier of the current members. b stays usable.
func (b *Builder) Build() Front {
	if len(b.entries) == 0 {
		return Empty()
	}
	packed := make([]criteria.Criteria, len(b.entries))
	copy(packed, b.entries)
	return Front{packed: packed}
}
