package timetable

import (
	"fmt"
	"math"

	"journeyplanner.org/internal/flatbuf"
)

const coordinateUnit = 360.0 / (1 << 32)

// Record layouts of the day-invariant station tables.
var (
	StationLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.U16), // name
		flatbuf.F(1, flatbuf.S32), // longitude
		flatbuf.F(2, flatbuf.S32), // latitude
	)
	StationAliasLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.U16), // alias
		flatbuf.F(1, flatbuf.U16), // station name
	)
	PlatformLayout = flatbuf.MustStructure(
		flatbuf.F(0, flatbuf.U16), // name
		flatbuf.F(1, flatbuf.U16), // station id
	)
)

const (
	stationName = iota
	stationLon
	stationLat
)

const (
	aliasName = iota
	aliasStationName
)

const (
	platformName = iota
	platformStation
)

// Stations is the table of stations.
type Stations struct {
	buf     *flatbuf.Buffer
	strings StringTable
}

// NewStations reads stations records.
func NewStations(data []byte, strings StringTable) (*Stations, error) {
	buf, err := flatbuf.NewBuffer(StationLayout, data)
	if err != nil {
		return nil, fmt.Errorf("stations: %w", err)
	}
	return &Stations{buf: buf, strings: strings}, nil
}

func (s *Stations) Size() int { return s.buf.Size() }

func (s *Stations) Name(id int) string {
	return s.strings[s.buf.U16(stationName, id)]
}

// Longitude returns the longitude of the station in degrees.
func (s *Stations) Longitude(id int) float64 {
	return float64(s.buf.S32(stationLon, id)) * coordinateUnit
}

// Latitude returns the latitude of the station in degrees.
func (s *Stations) Latitude(id int) float64 {
	return float64(s.buf.S32(stationLat, id)) * coordinateUnit
}

// EncodeCoordinate converts degrees to the fixed-point unit stored in station records.
func EncodeCoordinate(degrees float64) int64 {
	return int64(math.Round(degrees / coordinateUnit))
}

// StationAliases maps alternative names to station names.
type StationAliases struct {
	buf     *flatbuf.Buffer
	strings StringTable
}

// NewStationAliases reads station alias records.
func NewStationAliases(data []byte, strings StringTable) (*StationAliases, error) {
	buf, err := flatbuf.NewBuffer(StationAliasLayout, data)
	if err != nil {
		return nil, fmt.Errorf("station aliases: %w", err)
	}
	return &StationAliases{buf: buf, strings: strings}, nil
}

func (a *StationAliases) Size() int { return a.buf.Size() }

func (a *StationAliases) Alias(id int) string {
	return a.strings[a.buf.U16(aliasName, id)]
}

func (a *StationAliases) StationName(id int) string {
	return a.strings[a.buf.U16(aliasStationName, id)]
}

// Platforms is the table of platforms, tracks and bays.
type Platforms struct {
	buf     *flatbuf.Buffer
	strings StringTable
}

// NewPlatforms reads platform records.
func NewPlatforms(data []byte, strings StringTable) (*Platforms, error) {
	buf, err := flatbuf.NewBuffer(PlatformLayout, data)
	if err != nil {
		return nil, fmt.Errorf("platforms: %w", err)
	}
	return &Platforms{buf: buf, strings: strings}, nil
}

func (p *Platforms) Size() int { return p.buf.Size() }

// Name returns the platform label, which may be empty.
func (p *Platforms) Name(id int) string {
	return p.strings[p.buf.U16(platformName, id)]
}

func (p *Platforms) StationID(id int) int {
	return p.buf.U16(platformStation, id)
}
