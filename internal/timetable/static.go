package timetable

import (
	"fmt"
	"io/fs"
	"time"
)

// tables holds the day-invariant part of a timetable.
type tables struct {
	strings   StringTable
	stations  *Stations
	aliases   *StationAliases
	platforms *Platforms
	routes    *Routes
	transfers *Transfers
}

func newTables(strings StringTable, stations, aliases, platforms, routes, transfers []byte) (*tables, error) {
	t := &tables{strings: strings}
	var err error
	if t.stations, err = NewStations(stations, strings); err != nil {
		return nil, err
	}
	if t.aliases, err = NewStationAliases(aliases, strings); err != nil {
		return nil, err
	}
	if t.platforms, err = NewPlatforms(platforms, strings); err != nil {
		return nil, err
	}
	if t.routes, err = NewRoutes(routes, strings); err != nil {
		return nil, err
	}
	if t.transfers, err = NewTransfers(transfers); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tables) Stations() *Stations             { return t.stations }
func (t *tables) StationAliases() *StationAliases { return t.aliases }
func (t *tables) Platforms() *Platforms           { return t.platforms }
func (t *tables) Routes() *Routes                 { return t.routes }
func (t *tables) Transfers() *Transfers           { return t.transfers }

type day struct {
	trips       *Trips
	connections *Connections
}

func newDay(strings StringTable, trips, connections, successors []byte) (*day, error) {
	tr, err := NewTrips(trips, strings)
	if err != nil {
		return nil, err
	}
	conns, err := NewConnections(connections, successors)
	if err != nil {
		return nil, err
	}
	return &day{trips: tr, connections: conns}, nil
}

func dayNotAvailable(date time.Time, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDayNotAvailable, DayKey(date), err)
}

var errNoPartition = fmt.Errorf("no partition: %w", fs.ErrNotExist)
