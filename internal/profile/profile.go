// Package profile holds the result of a routing query: one Pareto frontier per station
// for a fixed date and destination.
package profile

import (
	"fmt"
	"time"

	"journeyplanner.org/internal/pareto"
	"journeyplanner.org/internal/timetable"
)

// Profile is immutable once built.
type Profile struct {
	tt           timetable.Timetable
	date         time.Time
	arrStationID int
	stations     []pareto.Front
}

func (p *Profile) Timetable() timetable.Timetable { return p.tt }

func (p *Profile) Date() time.Time { return p.date }

// ArrStationID returns the destination station.
func (p *Profile) ArrStationID() int { return p.arrStationID }

// ForStation returns the frontier of the given station. It panics if the id is not a
// station id of the timetable.
func (p *Profile) ForStation(stationID int) pareto.Front {
	return p.stations[stationID]
}

// Builder assembles a Profile. Besides the station frontiers it owns one transient
// frontier per trip of the day, dropped by Build.
type Builder struct {
	tt           timetable.Timetable
	date         time.Time
	arrStationID int
	stations     []*pareto.Builder
	trips        []*pareto.Builder
}

// NewBuilder sizes a builder for the stations of tt and the trips running on date.
func NewBuilder(tt timetable.Timetable, date time.Time, arrStationID int) (*Builder, error) {
	trips, err := tt.TripsFor(date)
	if err != nil {
		return nil, err
	}
	if !timetable.IsStationID(tt, arrStationID) {
		return nil, fmt.Errorf("destination %d is not a station id", arrStationID)
	}
	return &Builder{
		tt:           tt,
		date:         date,
		arrStationID: arrStationID,
		stations:     make([]*pareto.Builder, tt.Stations().Size()),
		trips:        make([]*pareto.Builder, trips.Size()),
	}, nil
}

// ForStation returns the builder of a station, or nil if none was set.
// Like the other accessors it panics on an invalid id.
func (b *Builder) ForStation(stationID int) *pareto.Builder {
	return b.stations[stationID]
}

func (b *Builder) SetForStation(stationID int, f *pareto.Builder) {
	b.stations[stationID] = f
}

// ForTrip returns the builder of a trip, or nil if none was set.
func (b *Builder) ForTrip(tripID int) *pareto.Builder {
	return b.trips[tripID]
}

func (b *Builder) SetForTrip(tripID int, f *pareto.Builder) {
	b.trips[tripID] = f
}

// Build freezes the station frontiers and releases the trip frontiers.
func (b *Builder) Build() *Profile {
	fronts := make([]pareto.Front, len(b.stations))
	for id, f := range b.stations {
		if f != nil {
			fronts[id] = f.Build()
		} else {
			fronts[id] = pareto.Empty()
		}
	}
	b.trips = nil
	return &Profile{
		tt:           b.tt,
		date:         b.date,
		arrStationID: b.arrStationID,
		stations:     fronts,
	}
}
