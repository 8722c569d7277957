// Package journey models itineraries and extracts them from a profile.
package journey

import (
	"errors"
	"fmt"
	"time"

	"journeyplanner.org/internal/timetable"
)

// ErrInvalid is returned when legs do not form a valid journey.
var ErrInvalid = errors.New("invalid journey")

// Stop is a place where a leg starts or ends. PlatformName is empty for a bare station.
type Stop struct {
	Name         string
	PlatformName string
	Longitude    float64
	Latitude     float64
}

func (s Stop) String() string {
	if s.PlatformName == "" {
		return s.Name
	}
	return s.Name + " (" + s.PlatformName + ")"
}

// IntermediateStop is a stop a vehicle calls at between the boarding and alighting stops.
type IntermediateStop struct {
	Stop    Stop
	ArrTime time.Time
	DepTime time.Time
}

// Leg is either a Transport or a Foot leg.
type Leg interface {
	DepStop() Stop
	DepTime() time.Time
	ArrStop() Stop
	ArrTime() time.Time
	IntermediateStops() []IntermediateStop
	isLeg()
}

// Duration returns the time spent on a leg.
func Duration(l Leg) time.Duration {
	return l.ArrTime().Sub(l.DepTime())
}

// Transport is a ride aboard one vehicle.
type Transport struct {
	From          Stop
	Departure     time.Time
	To            Stop
	Arrival       time.Time
	Intermediates []IntermediateStop
	Vehicle       timetable.Vehicle
	Route         string
	Destination   string
}

func (t Transport) DepStop() Stop                          { return t.From }
func (t Transport) DepTime() time.Time                     { return t.Departure }
func (t Transport) ArrStop() Stop                          { return t.To }
func (t Transport) ArrTime() time.Time                     { return t.Arrival }
func (t Transport) IntermediateStops() []IntermediateStop { return t.Intermediates }
func (Transport) isLeg()                                   {}

// Foot is a walk between two stops.
type Foot struct {
	From      Stop
	Departure time.Time
	To        Stop
	Arrival   time.Time
}

func (f Foot) DepStop() Stop                        { return f.From }
func (f Foot) DepTime() time.Time                   { return f.Departure }
func (f Foot) ArrStop() Stop                        { return f.To }
func (f Foot) ArrTime() time.Time                   { return f.Arrival }
func (Foot) IntermediateStops() []IntermediateStop { return nil }
func (Foot) isLeg()                                 {}

// IsTransfer reports whether the walk stays within one station. Stations sharing a
// name are told apart by their coordinates.
func (f Foot) IsTransfer() bool {
	return f.From.Name == f.To.Name &&
		f.From.Latitude == f.To.Latitude &&
		f.From.Longitude == f.To.Longitude
}

// Journey is a non-empty sequence of legs alternating between transport and foot, each
// starting where and after the previous one ended.
type Journey struct {
	legs []Leg
}

// New validates legs and returns the journey they form.
func New(legs []Leg) (Journey, error) {
	if len(legs) == 0 {
		return Journey{}, fmt.Errorf("no legs: %w", ErrInvalid)
	}
	for i, l := range legs {
		if l.ArrTime().Before(l.DepTime()) {
			return Journey{}, fmt.Errorf("leg %d arrives before it departs: %w", i, ErrInvalid)
		}
		prev := l.DepTime()
		for _, s := range l.IntermediateStops() {
			if s.ArrTime.Before(prev) || s.DepTime.Before(s.ArrTime) {
				return Journey{}, fmt.Errorf("leg %d calls at %s out of order: %w", i, s.Stop, ErrInvalid)
			}
			prev = s.DepTime
		}
		if l.ArrTime().Before(prev) {
			return Journey{}, fmt.Errorf("leg %d arrives before its last call: %w", i, ErrInvalid)
		}
		if i == 0 {
			continue
		}
		before := legs[i-1]
		if isFoot(before) == isFoot(l) {
			return Journey{}, fmt.Errorf("legs %d and %d are of the same kind: %w", i-1, i, ErrInvalid)
		}
		if before.ArrStop() != l.DepStop() {
			return Journey{}, fmt.Errorf("leg %d ends at %s but leg %d starts at %s: %w", i-1, before.ArrStop(), i, l.DepStop(), ErrInvalid)
		}
		if l.DepTime().Before(before.ArrTime()) {
			return Journey{}, fmt.Errorf("leg %d departs before leg %d arrives: %w", i, i-1, ErrInvalid)
		}
	}
	owned := make([]Leg, len(legs))
	copy(owned, legs)
	return Journey{legs: owned}, nil
}

func isFoot(l Leg) bool {
	_, ok := l.(Foot)
	return ok
}

// Legs returns a copy of the legs.
func (j Journey) Legs() []Leg {
	out := make([]Leg, len(j.legs))
	copy(out, j.legs)
	return out
}

func (j Journey) DepStop() Stop      { return j.legs[0].DepStop() }
func (j Journey) ArrStop() Stop      { return j.legs[len(j.legs)-1].ArrStop() }
func (j Journey) DepTime() time.Time { return j.legs[0].DepTime() }
func (j Journey) ArrTime() time.Time { return j.legs[len(j.legs)-1].ArrTime() }

func (j Journey) Duration() time.Duration {
	return j.ArrTime().Sub(j.DepTime())
}

// Changes returns the number of vehicle changes.
func (j Journey) Changes() int {
	n := 0
	for _, l := range j.legs {
		if _, ok := l.(Transport); ok {
			n++
		}
	}
	return max(n-1, 0)
}
