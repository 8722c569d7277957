// Package pareto maintains sets of packed criteria in which no member dominates another.
package pareto

import (
	"errors"
	"fmt"
	"strings"

	"journeyplanner.org/internal/criteria"
)

// ErrNotFound is returned by Front.Get when no member matches.
var ErrNotFound = errors.New("no matching tuple in frontier")

// Front is an immutable Pareto frontier, sorted by packed value.
type Front struct {
	packed []criteria.Criteria
}

// Empty returns the frontier without members.
func Empty() Front {
	return Front{}
}

func (f Front) Size() int {
	return len(f.packed)
}

func (f Front) IsEmpty() bool {
	return len(f.packed) == 0
}

// At returns the i-th member in storage order.
func (f Front) At(i int) criteria.Criteria {
	return f.packed[i]
}

// ForEach calls fn for every member in storage order.
func (f Front) ForEach(fn func(criteria.Criteria)) {
	for _, c := range f.packed {
		fn(c)
	}
}

// Get returns the member with exactly the given arrival time and change count.
func (f Front) Get(arrMins, changes int) (criteria.Criteria, error) {
	for _, c := range f.packed {
		if c.ArrMins() == arrMins && c.Changes() == changes {
			return c, nil
		}
	}
	return 0, fmt.Errorf("arrival %d with %d changes: %w", arrMins, changes, ErrNotFound)
}

func (f Front) String() string {
	parts := make([]string, len(f.packed))
	for i, c := range f.packed {
		parts[i] = c.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
