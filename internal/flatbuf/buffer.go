package flatbuf

import (
	"encoding/binary"
	"fmt"
)

// Buffer is a read-only view of consecutive records laid out according to a Structure.
//
// Reads at an invalid field or element panic with an error wrapping ErrOutOfRange, the way
// indexing a slice out of bounds does.
type Buffer struct {
	structure *Structure
	data      []byte
	size      int
}

// NewBuffer wraps data, whose length must be a multiple of the record size.
func NewBuffer(structure *Structure, data []byte) (*Buffer, error) {
	recordSize := structure.TotalSize()
	if recordSize == 0 || len(data)%recordSize != 0 {
		return nil, fmt.Errorf("%d bytes with %d-byte records: %w", len(data), recordSize, ErrBufferSize)
	}
	return &Buffer{
		structure: structure,
		data:      data,
		size:      len(data) / recordSize,
	}, nil
}

// Size returns the number of records.
func (b *Buffer) Size() int {
	return b.size
}

// U8 reads an unsigned 8-bit field.
func (b *Buffer) U8(field, element int) int {
	return int(b.data[b.offset(field, element, U8)])
}

// U16 reads an unsigned 16-bit field.
func (b *Buffer) U16(field, element int) int {
	off := b.offset(field, element, U16)
	return int(binary.BigEndian.Uint16(b.data[off : off+2]))
}

// S32 reads a signed 32-bit field.
func (b *Buffer) S32(field, element int) int32 {
	off := b.offset(field, element, S32)
	return int32(binary.BigEndian.Uint32(b.data[off : off+4]))
}

func (b *Buffer) offset(field, element int, width Width) int {
	if element >= b.size {
		panic(fmt.Errorf("element %d of %d: %w", element, b.size, ErrOutOfRange))
	}
	off, err := b.structure.Offset(field, element)
	if err != nil {
		panic(err)
	}
	if w := b.structure.Width(field); w != width {
		panic(fmt.Errorf("field %d is %d bytes wide, read as %d: %w", field, w, width, ErrOutOfRange))
	}
	return off
}
