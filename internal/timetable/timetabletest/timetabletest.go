// Package timetabletest builds small timetables for tests.
package timetabletest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/timetable"
)

// Date is the service day fixtures use unless told otherwise.
var Date = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

// StopTime is one call of a trip at a stop, in minutes after midnight.
type StopTime struct {
	Stop int
	Arr  int
	Dep  int
}

// At returns a call at stop arriving at arr and departing at dep.
func At(stop, arr, dep int) StopTime {
	return StopTime{Stop: stop, Arr: arr, Dep: dep}
}

// Builder assembles a timetable.Data from Go literals.
type Builder struct {
	data timetable.Data
}

func New() *Builder {
	return &Builder{data: timetable.Data{Days: make(map[string]timetable.DayData)}}
}

// Station adds a station and returns its id. Stations must be added before platforms.
func (b *Builder) Station(name string, lat, lon float64) int {
	if len(b.data.Platforms) > 0 {
		panic("timetabletest: stations must be added before platforms")
	}
	b.data.Stations = append(b.data.Stations, timetable.StationData{Name: name, Latitude: lat, Longitude: lon})
	return len(b.data.Stations) - 1
}

// Platform adds a platform of station and returns its stop id.
func (b *Builder) Platform(station int, name string) int {
	b.data.Platforms = append(b.data.Platforms, timetable.PlatformData{Name: name, StationID: station})
	return len(b.data.Stations) + len(b.data.Platforms) - 1
}

func (b *Builder) Alias(alias, stationName string) {
	b.data.Aliases = append(b.data.Aliases, timetable.AliasData{Alias: alias, StationName: stationName})
}

func (b *Builder) Route(name string, vehicle timetable.Vehicle) int {
	b.data.Routes = append(b.data.Routes, timetable.RouteData{Name: name, Vehicle: vehicle})
	return len(b.data.Routes) - 1
}

// Walk adds a directed walking transfer between two stations.
func (b *Builder) Walk(from, to, minutes int) {
	b.data.Transfers = append(b.data.Transfers, timetable.TransferData{DepStationID: from, ArrStationID: to, Minutes: minutes})
}

// Trip adds a run of route on date calling at the given stops in order, and returns its
// trip id for that day.
func (b *Builder) Trip(date time.Time, route int, destination string, calls ...StopTime) int {
	key := timetable.DayKey(date)
	day := b.data.Days[key]
	tripID := len(day.Trips)
	day.Trips = append(day.Trips, timetable.TripData{RouteID: route, Destination: destination})
	for i := 0; i+1 < len(calls); i++ {
		day.Connections = append(day.Connections, timetable.ConnectionData{
			DepStopID: calls[i].Stop,
			DepMins:   calls[i].Dep,
			ArrStopID: calls[i+1].Stop,
			ArrMins:   calls[i+1].Arr,
			TripID:    tripID,
			TripPos:   i,
		})
	}
	b.data.Days[key] = day
	return tripID
}

// Data returns the assembled data.
func (b *Builder) Data() *timetable.Data {
	return &b.data
}

// Encode encodes the assembled data, failing the test on error.
func (b *Builder) Encode(t testing.TB) *timetable.Encoded {
	t.Helper()
	enc, err := b.data.Encode()
	require.NoError(t, err)
	return enc
}

// Build returns an in-memory timetable, failing the test on error.
func (b *Builder) Build(t testing.TB) *timetable.Memory {
	t.Helper()
	tt, err := timetable.NewMemory(b.Encode(t))
	require.NoError(t, err)
	return tt
}
