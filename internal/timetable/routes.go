package timetable

import (
	"fmt"

	"journeyplanner.org/internal/flatbuf"
)

// Record layouts of routes and of the per-day trips.
var (
	RouteLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.U16), // name
		flatbuf.F(1, flatbuf.U8),  // vehicle kind
	)
	TripLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.U16), // route id
		flatbuf.F(1, flatbuf.U16), // destination
	)
)

const (
	routeName = iota
	routeKind
)

const (
	tripRoute = iota
	tripDestination
)

// Routes is the table of routes.
type Routes struct {
	buf     *flatbuf.Buffer
	strings StringTable
}

// NewRoutes reads route records.
func NewRoutes(data []byte, strings StringTable) (*Routes, error) {
	buf, err := flatbuf.NewBuffer(RouteLayout, data)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	return &Routes{buf: buf, strings: strings}, nil
}

func (r *Routes) Size() int { return r.buf.Size() }

func (r *Routes) Name(id int) string {
	return r.strings[r.buf.U16(routeName, id)]
}

// Vehicle returns the vehicle kind of the route. Unknown kinds read as Bus.
func (r *Routes) Vehicle(id int) Vehicle {
	v, err := VehicleFromIndex(r.buf.U8(routeKind, id))
	if err != nil {
		return Bus
	}
	return v
}

// Trips is the table of the runs of one service day.
type Trips struct {
	buf     *flatbuf.Buffer
	strings StringTable
}

// NewTrips reads trip records.
func NewTrips(data []byte, strings StringTable) (*Trips, error) {
	buf, err := flatbuf.NewBuffer(TripLayout, data)
	if err != nil {
		return nil, fmt.Errorf("trips: %w", err)
	}
	return &Trips{buf: buf, strings: strings}, nil
}

func (t *Trips) Size() int { return t.buf.Size() }

func (t *Trips) RouteID(id int) int {
	return t.buf.U16(tripRoute, id)
}

// Destination returns the final destination label shown on the vehicle.
func (t *Trips) Destination(id int) string {
	return t.strings[t.buf.U16(tripDestination, id)]
}
