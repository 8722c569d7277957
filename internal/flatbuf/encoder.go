package flatbuf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder appends records laid out according to a Structure.
type Encoder struct {
	structure *Structure
	data      []byte
	count     int
}

// NewEncoder returns an empty encoder for the given layout.
func NewEncoder(structure *Structure) *Encoder {
	return &Encoder{structure: structure}
}

// Append encodes one record. It expects exactly one value per field, in field order,
// each fitting its field width (S32 fields accept any int32 value).
func (e *Encoder) Append(values ...int64) error {
	if len(values) != e.structure.FieldCount() {
		return fmt.Errorf("record %d has %d values for %d fields: %w", e.count, len(values), e.structure.FieldCount(), ErrInvalidLayout)
	}
	record := make([]byte, e.structure.TotalSize())
	for field, v := range values {
		off, _ := e.structure.Offset(field, 0)
		switch e.structure.Width(field) {
		case U8:
			if v < 0 || v > math.MaxUint8 {
				return fmt.Errorf("record %d field %d value %d: %w", e.count, field, v, ErrOutOfRange)
			}
			record[off] = byte(v)
		case U16:
			if v < 0 || v > math.MaxUint16 {
				return fmt.Errorf("record %d field %d value %d: %w", e.count, field, v, ErrOutOfRange)
			}
			binary.BigEndian.PutUint16(record[off:], uint16(v))
		case S32:
			if v < math.MinInt32 || v > math.MaxUint32 {
				return fmt.Errorf("record %d field %d value %d: %w", e.count, field, v, ErrOutOfRange)
			}
			binary.BigEndian.PutUint32(record[off:], uint32(v))
		}
	}
	e.data = append(e.data, record...)
	e.count++
	return nil
}

// Len returns the number of records appended so far.
func (e *Encoder) Len() int {
	return e.count
}

// Bytes returns the encoded records.
func (e *Encoder) Bytes() []byte {
	return e.data
}
