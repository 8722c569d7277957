// Package packing splits and merges small integers packed into a single 32-bit word.
//
// The binary timetable and the packed criteria payload both store a 24-bit value in the
// upper bits of a word and an 8-bit value in the lower bits. Range uses the same layout
// to describe a half-open integer interval as (start, length).
package packing

import (
	"errors"
	"fmt"
)

const (
	max24 = 1<<24 - 1
	max8  = 1<<8 - 1
)

// ErrOutOfRange is returned when a value does not fit in its bit field.
var ErrOutOfRange = errors.New("value out of range")

// Pack24x8 stores hi in the upper 24 bits and lo in the lower 8 bits of a 32-bit word.
func Pack24x8(hi, lo int) (uint32, error) {
	if hi < 0 || hi > max24 {
		return 0, fmt.Errorf("24-bit field %d: %w", hi, ErrOutOfRange)
	}
	if lo < 0 || lo > max8 {
		return 0, fmt.Errorf("8-bit field %d: %w", lo, ErrOutOfRange)
	}
	return uint32(hi)<<8 | uint32(lo), nil
}

// Unpack24 returns the upper 24 bits of a packed word.
func Unpack24(v uint32) int {
	return int(v >> 8)
}

// Unpack8 returns the lower 8 bits of a packed word.
func Unpack8(v uint32) int {
	return int(v & max8)
}

// Range is a half-open interval [start, end) packed as (start: 24 bits, length: 8 bits).
type Range uint32

// NewRange packs [start, end). The interval may hold at most 255 values.
func NewRange(start, end int) (Range, error) {
	if end < start {
		return 0, fmt.Errorf("range [%d, %d): %w", start, end, ErrOutOfRange)
	}
	v, err := Pack24x8(start, end-start)
	if err != nil {
		return 0, fmt.Errorf("range [%d, %d): %w", start, end, err)
	}
	return Range(v), nil
}

// Start returns the first value of the interval.
func (r Range) Start() int {
	return Unpack24(uint32(r))
}

// Len returns the number of values in the interval.
func (r Range) Len() int {
	return Unpack8(uint32(r))
}

// End returns the first value past the interval.
func (r Range) End() int {
	return r.Start() + r.Len()
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start(), r.End())
}
