// Package timetable exposes a public-transport timetable stored as flat binary records.
//
// Day-invariant tables (stations, station aliases, platforms, routes, transfers and the
// shared string table) are loaded once. Trips and connections are partitioned by service
// day and resolved on demand. Every accessor is a read-only view over byte regions: no
// per-element allocation happens when reading.
//
// Stop ids cover stations and platforms in a single space: ids below Stations().Size()
// are station ids, the following ones are platform ids.
package timetable

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by exact lookups that have no matching entry.
	ErrNotFound = errors.New("not found")
	// ErrDayNotAvailable is returned when the per-day partition of a date cannot be read.
	// It wraps the underlying I/O error, which is usually fs.ErrNotExist.
	ErrDayNotAvailable = errors.New("timetable day not available")
)

// Timetable gives access to the timetable of every served day.
type Timetable interface {
	Stations() *Stations
	StationAliases() *StationAliases
	Platforms() *Platforms
	Routes() *Routes
	Transfers() *Transfers
	TripsFor(date time.Time) (*Trips, error)
	ConnectionsFor(date time.Time) (*Connections, error)
}

// DayKey returns the ISO name of the partition holding the given service date.
func DayKey(date time.Time) string {
	return date.Format(time.DateOnly)
}

// IsStationID reports whether stopID designates a station.
func IsStationID(tt Timetable, stopID int) bool {
	return stopID >= 0 && stopID < tt.Stations().Size()
}

// IsPlatformID reports whether stopID designates a platform.
func IsPlatformID(tt Timetable, stopID int) bool {
	n := tt.Stations().Size()
	return stopID >= n && stopID < n+tt.Platforms().Size()
}

// StationID returns the station of a stop: the stop itself for a station, the parent
// station for a platform.
func StationID(tt Timetable, stopID int) int {
	if IsStationID(tt, stopID) {
		return stopID
	}
	return tt.Platforms().StationID(stopID - tt.Stations().Size())
}

// PlatformName returns the platform label of a stop, or "" when the stop is a station.
func PlatformName(tt Timetable, stopID int) string {
	if IsStationID(tt, stopID) {
		return ""
	}
	return tt.Platforms().Name(stopID - tt.Stations().Size())
}

// FindStation resolves a station by its exact name, then by alias.
func FindStation(tt Timetable, name string) (int, error) {
	stations := tt.Stations()
	for id := 0; id < stations.Size(); id++ {
		if stations.Name(id) == name {
			return id, nil
		}
	}
	aliases := tt.StationAliases()
	for i := 0; i < aliases.Size(); i++ {
		if aliases.Alias(i) != name {
			continue
		}
		target := aliases.StationName(i)
		for id := 0; id < stations.Size(); id++ {
			if stations.Name(id) == target {
				return id, nil
			}
		}
	}
	return 0, ErrNotFound
}
