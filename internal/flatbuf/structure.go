// Package flatbuf reads fixed-width records out of flat byte regions.
//
// A Structure describes the layout of one record as an ordered list of fields; a Buffer
// wraps a byte region holding a sequence of such records and reads big-endian values at
// (field, element) without allocating.
package flatbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLayout is returned when field declarations are out of order, duplicated or skip an index.
	ErrInvalidLayout = errors.New("invalid record layout")
	// ErrOutOfRange is returned for field or element indices outside their valid range.
	ErrOutOfRange = errors.New("index out of range")
	// ErrBufferSize is returned when a region is not a whole number of records.
	ErrBufferSize = errors.New("buffer size is not a multiple of the record size")
)

// Width is the size in bytes of one field.
type Width uint8

const (
	U8  Width = 1
	U16 Width = 2
	S32 Width = 4
)

func (w Width) valid() bool {
	return w == U8 || w == U16 || w == S32
}

// Field declares the field at Index with the given width.
type Field struct {
	Index int
	Width Width
}

// F is shorthand for Field{Index: index, Width: width}.
func F(index int, width Width) Field {
	return Field{Index: index, Width: width}
}

// Structure is the layout of one record. It is plain data: offsets are a pure function of it.
type Structure struct {
	widths  []Width
	offsets []int
	size    int
}

// NewStructure builds a layout from fields given in index order, starting at 0 with no gaps.
func NewStructure(fields ...Field) (*Structure, error) {
	s := &Structure{
		widths:  make([]Width, len(fields)),
		offsets: make([]int, len(fields)),
	}
	for i, f := range fields {
		if f.Index != i {
			return nil, fmt.Errorf("field %d declared at position %d: %w", f.Index, i, ErrInvalidLayout)
		}
		if !f.Width.valid() {
			return nil, fmt.Errorf("field %d has width %d: %w", f.Index, f.Width, ErrInvalidLayout)
		}
		s.widths[i] = f.Width
		s.offsets[i] = s.size
		s.size += int(f.Width)
	}
	return s, nil
}

// MustStructure is like NewStructure but panics on an invalid layout.
// It is meant for package-level layout declarations.
func MustStructure(fields ...Field) *Structure {
	s, err := NewStructure(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// TotalSize returns the size in bytes of one record.
func (s *Structure) TotalSize() int {
	return s.size
}

// FieldCount returns the number of fields of the record.
func (s *Structure) FieldCount() int {
	return len(s.widths)
}

// Width returns the width of the given field.
func (s *Structure) Width(field int) Width {
	return s.widths[field]
}

// Offset returns the byte offset of field within the element-th record.
func (s *Structure) Offset(field, element int) (int, error) {
	if field < 0 || field >= len(s.offsets) {
		return 0, fmt.Errorf("field %d of %d: %w", field, len(s.offsets), ErrOutOfRange)
	}
	if element < 0 {
		return 0, fmt.Errorf("element %d: %w", element, ErrOutOfRange)
	}
	return s.offsets[field] + element*s.size, nil
}
