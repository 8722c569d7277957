package timetable

import (
	"fmt"

	"journeyplanner.org/internal/flatbuf"
	"journeyplanner.org/internal/packing"
)

// Record layouts of the per-day connections and their successor table.
var (
	ConnectionLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.U16), // departure stop
		flatbuf.F(1, flatbuf.U16), // departure minutes
		flatbuf.F(2, flatbuf.U16), // arrival stop
		flatbuf.F(3, flatbuf.U16), // arrival minutes
		flatbuf.F(4, flatbuf.S32), // trip id (24 bits) and position in trip (8 bits)
	)
	SuccessorLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.S32), // next connection of the same trip
	)
)

const (
	connDepStop = iota
	connDepMins
	connArrStop
	connArrMins
	connTripPos
)

// Connections is the table of the connections of one service day, sorted by decreasing
// departure time.
type Connections struct {
	buf  *flatbuf.Buffer
	succ *flatbuf.Buffer
}

// NewConnections reads connection records and the parallel successor table.
func NewConnections(data, succ []byte) (*Connections, error) {
	buf, err := flatbuf.NewBuffer(ConnectionLayout, data)
	if err != nil {
		return nil, fmt.Errorf("connections: %w", err)
	}
	succBuf, err := flatbuf.NewBuffer(SuccessorLayout, succ)
	if err != nil {
		return nil, fmt.Errorf("connection successors: %w", err)
	}
	if buf.Size() != succBuf.Size() {
		return nil, fmt.Errorf("%d connections but %d successors: %w", buf.Size(), succBuf.Size(), flatbuf.ErrBufferSize)
	}
	return &Connections{buf: buf, succ: succBuf}, nil
}

func (c *Connections) Size() int { return c.buf.Size() }

func (c *Connections) DepStopID(id int) int { return c.buf.U16(connDepStop, id) }

// DepMins returns the departure time in minutes after midnight of the service day.
func (c *Connections) DepMins(id int) int { return c.buf.U16(connDepMins, id) }

func (c *Connections) ArrStopID(id int) int { return c.buf.U16(connArrStop, id) }

// ArrMins returns the arrival time in minutes after midnight of the service day.
func (c *Connections) ArrMins(id int) int { return c.buf.U16(connArrMins, id) }

func (c *Connections) TripID(id int) int {
	return packing.Unpack24(uint32(c.buf.S32(connTripPos, id)))
}

// TripPos returns the zero-based position of the connection within its trip.
func (c *Connections) TripPos(id int) int {
	return packing.Unpack8(uint32(c.buf.S32(connTripPos, id)))
}

// NextConnectionID returns the following connection of the same trip. The last
// connection of a trip is followed by the first one.
func (c *Connections) NextConnectionID(id int) int {
	return int(c.succ.S32(0, id))
}
