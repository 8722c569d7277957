// Package criteria packs the outcome of reaching the destination into one 64-bit value.
//
// Bit layout, most significant first: 1 unused bit, 12 bits departure, 12 bits arrival,
// 7 bits changes, 32 bits payload. Times are minutes after midnight offset by 240 so that
// [-240, 2880) is representable. The departure field stores 4095 - (minutes + 240), with 0
// meaning absent, so that a later departure is a smaller value. Comparing two values with
// equal payloads numerically therefore orders them consistently with dominance.
package criteria

import (
	"errors"
	"fmt"
)

// Criteria is a packed (departure, arrival, changes, payload) tuple.
type Criteria uint64

const (
	// MinMins and MaxMins bound representable times: [MinMins, MaxMins).
	MinMins = -240
	MaxMins = 2880
	// MaxChanges is the largest representable change count.
	MaxChanges = 127

	timeOffset = 240
	timeMax    = 4095

	payloadBits = 32
	changesBits = 7
	arrBits     = 12

	changesShift = payloadBits
	arrShift     = changesShift + changesBits
	depShift     = arrShift + arrBits

	payloadMask = 1<<payloadBits - 1
	changesMask = 1<<changesBits - 1
	timeMask    = 1<<arrBits - 1
)

// ErrOutOfRange is returned when a field does not fit its bit range.
var ErrOutOfRange = errors.New("criteria field out of range")

// Pack returns criteria without a departure time.
func Pack(arrMins, changes int, payload uint32) (Criteria, error) {
	if arrMins < MinMins || arrMins >= MaxMins {
		return 0, fmt.Errorf("arrival %d: %w", arrMins, ErrOutOfRange)
	}
	if changes < 0 || changes > MaxChanges {
		return 0, fmt.Errorf("changes %d: %w", changes, ErrOutOfRange)
	}
	return Criteria(uint64(arrMins+timeOffset)<<arrShift | uint64(changes)<<changesShift | uint64(payload)), nil
}

// MustPack is like Pack but panics on invalid fields.
func MustPack(arrMins, changes int, payload uint32) Criteria {
	c, err := Pack(arrMins, changes, payload)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Criteria) depField() uint64 {
	return uint64(c) >> depShift & timeMask
}

// HasDepMins reports whether c carries a departure time.
func (c Criteria) HasDepMins() bool {
	return c.depField() != 0
}

// DepMins returns the departure time. It panics if c has none.
func (c Criteria) DepMins() int {
	f := c.depField()
	if f == 0 {
		panic("criteria: no departure time")
	}
	return timeMax - int(f) - timeOffset
}

// ArrMins returns the arrival time in minutes after midnight.
func (c Criteria) ArrMins() int {
	return int(uint64(c)>>arrShift&timeMask) - timeOffset
}

// Changes returns the number of changes between vehicles.
func (c Criteria) Changes() int {
	return int(uint64(c) >> changesShift & changesMask)
}

// Payload returns the 32-bit value carried alongside the criteria.
func (c Criteria) Payload() uint32 {
	return uint32(uint64(c) & payloadMask)
}

// WithDepMins returns c with its departure time set. It panics if depMins is not
// representable.
func (c Criteria) WithDepMins(depMins int) Criteria {
	if depMins < MinMins || depMins >= MaxMins {
		panic(fmt.Errorf("departure %d: %w", depMins, ErrOutOfRange))
	}
	f := uint64(timeMax - (depMins + timeOffset))
	return c.WithoutDepMins() | Criteria(f<<depShift)
}

// WithoutDepMins returns c with its departure time cleared.
func (c Criteria) WithoutDepMins() Criteria {
	return c &^ Criteria(timeMask<<depShift)
}

// WithAdditionalChange increments the change count. The count must be below MaxChanges.
func (c Criteria) WithAdditionalChange() Criteria {
	return c + 1<<changesShift
}

// WithPayload returns c carrying payload instead of its current one.
func (c Criteria) WithPayload(payload uint32) Criteria {
	return c&^payloadMask | Criteria(payload)
}

func (c Criteria) String() string {
	if c.HasDepMins() {
		return fmt.Sprintf("(dep=%d arr=%d changes=%d payload=%#x)", c.DepMins(), c.ArrMins(), c.Changes(), c.Payload())
	}
	return fmt.Sprintf("(arr=%d changes=%d payload=%#x)", c.ArrMins(), c.Changes(), c.Payload())
}

// DominatesOrIsEqual reports whether a is at least as good as b on every criterion: no
// later arrival, no more changes and, when both carry one, no earlier departure.
// It panics if exactly one of a and b carries a departure time.
func DominatesOrIsEqual(a, b Criteria) bool {
	ad, bd := a.depField(), b.depField()
	if (ad == 0) != (bd == 0) {
		panic(fmt.Sprintf("criteria: comparing %v with %v", a, b))
	}
	return ad <= bd && a.ArrMins() <= b.ArrMins() && a.Changes() <= b.Changes()
}
