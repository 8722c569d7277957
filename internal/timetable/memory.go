package timetable

import (
	"time"
)

// Memory is a Timetable backed by an Encoded dataset held in memory.
type Memory struct {
	*tables
	days map[string]*day
}

var _ Timetable = (*Memory)(nil)

// NewMemory decodes enc. The returned timetable shares the byte slices of enc.
func NewMemory(enc *Encoded) (*Memory, error) {
	t, err := newTables(StringTable(enc.Strings), enc.Stations, enc.Aliases, enc.Platforms, enc.Routes, enc.Transfers)
	if err != nil {
		return nil, err
	}
	m := &Memory{tables: t, days: make(map[string]*day, len(enc.Days))}
	for key, d := range enc.Days {
		parsed, err := newDay(t.strings, d.Trips, d.Connections, d.Successors)
		if err != nil {
			return nil, err
		}
		m.days[key] = parsed
	}
	return m, nil
}

func (m *Memory) TripsFor(date time.Time) (*Trips, error) {
	d, ok := m.days[DayKey(date)]
	if !ok {
		return nil, dayNotAvailable(date, errNoPartition)
	}
	return d.trips, nil
}

func (m *Memory) ConnectionsFor(date time.Time) (*Connections, error) {
	d, ok := m.days[DayKey(date)]
	if !ok {
		return nil, dayNotAvailable(date, errNoPartition)
	}
	return d.connections, nil
}
