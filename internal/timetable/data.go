package timetable

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"journeyplanner.org/internal/flatbuf"
	"journeyplanner.org/internal/packing"
)

// File names of a dataset directory.
const (
	StringsFile              = "strings.txt"
	StationsFile             = "stations.bin"
	StationAliasesFile       = "station-aliases.bin"
	PlatformsFile            = "platforms.bin"
	RoutesFile               = "routes.bin"
	TransfersFile            = "transfers.bin"
	TripsFile                = "trips.bin"
	ConnectionsFile          = "connections.bin"
	ConnectionSuccessorsFile = "connections-succ.bin"
)

// MaxTripLength is the largest number of connections a single trip may have.
const MaxTripLength = 256

type StationData struct {
	Name      string
	Latitude  float64
	Longitude float64
}

type AliasData struct {
	Alias       string
	StationName string
}

type PlatformData struct {
	Name      string
	StationID int
}

type RouteData struct {
	Name    string
	Vehicle Vehicle
}

type TripData struct {
	RouteID     int
	Destination string
}

// ConnectionData is one hop of a trip. Stop ids follow the station-then-platform id space.
type ConnectionData struct {
	DepStopID int
	DepMins   int
	ArrStopID int
	ArrMins   int
	TripID    int
	TripPos   int
}

type TransferData struct {
	DepStationID int
	ArrStationID int
	Minutes      int
}

// DayData holds the trips and connections of one service day.
type DayData struct {
	Trips       []TripData
	Connections []ConnectionData
}

// Data is a timetable in decoded form, as produced by an importer.
type Data struct {
	Stations  []StationData
	Aliases   []AliasData
	Platforms []PlatformData
	Routes    []RouteData
	Transfers []TransferData
	// Days is keyed by DayKey.
	Days map[string]DayData
}

// EncodedDay holds the binary partitions of one service day.
type EncodedDay struct {
	Trips       []byte
	Connections []byte
	Successors  []byte
}

// Encoded is a timetable in its binary form.
type Encoded struct {
	Strings   []string
	Stations  []byte
	Aliases   []byte
	Platforms []byte
	Routes    []byte
	Transfers []byte
	Days      map[string]EncodedDay
}

type stringInterner struct {
	index   map[string]int
	strings []string
}

func newStringInterner() *stringInterner {
	in := &stringInterner{index: make(map[string]int)}
	in.intern("")
	return in
}

func (in *stringInterner) intern(s string) int {
	if i, ok := in.index[s]; ok {
		return i
	}
	in.index[s] = len(in.strings)
	in.strings = append(in.strings, s)
	return len(in.strings) - 1
}

// Encode converts d into flat binary records. Transfers are sorted by arrival station,
// connections by decreasing departure time (ties by decreasing arrival time, then by
// decreasing position in trip), and the successor ring of every trip is derived.
func (d *Data) Encode() (*Encoded, error) {
	in := newStringInterner()
	out := &Encoded{Days: make(map[string]EncodedDay, len(d.Days))}
	stopCount := len(d.Stations) + len(d.Platforms)
	if stopCount > math.MaxUint16+1 {
		return nil, fmt.Errorf("%d stops: %w", stopCount, flatbuf.ErrOutOfRange)
	}

	stations := flatbuf.NewEncoder(StationLayout)
	for i, s := range d.Stations {
		if err := stations.Append(int64(in.intern(s.Name)), EncodeCoordinate(s.Longitude), EncodeCoordinate(s.Latitude)); err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
	}
	out.Stations = stations.Bytes()

	aliases := flatbuf.NewEncoder(StationAliasLayout)
	for i, a := range d.Aliases {
		if err := aliases.Append(int64(in.intern(a.Alias)), int64(in.intern(a.StationName))); err != nil {
			return nil, fmt.Errorf("alias %d: %w", i, err)
		}
	}
	out.Aliases = aliases.Bytes()

	platforms := flatbuf.NewEncoder(PlatformLayout)
	for i, p := range d.Platforms {
		if p.StationID < 0 || p.StationID >= len(d.Stations) {
			return nil, fmt.Errorf("platform %d: unknown station %d", i, p.StationID)
		}
		if err := platforms.Append(int64(in.intern(p.Name)), int64(p.StationID)); err != nil {
			return nil, fmt.Errorf("platform %d: %w", i, err)
		}
	}
	out.Platforms = platforms.Bytes()

	routes := flatbuf.NewEncoder(RouteLayout)
	for i, r := range d.Routes {
		if err := routes.Append(int64(in.intern(r.Name)), int64(r.Vehicle)); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
	}
	out.Routes = routes.Bytes()

	transfers := make([]TransferData, len(d.Transfers))
	copy(transfers, d.Transfers)
	sort.SliceStable(transfers, func(i, j int) bool {
		if transfers[i].ArrStationID != transfers[j].ArrStationID {
			return transfers[i].ArrStationID < transfers[j].ArrStationID
		}
		return transfers[i].DepStationID < transfers[j].DepStationID
	})
	transferEnc := flatbuf.NewEncoder(TransferLayout)
	for i, t := range transfers {
		if t.DepStationID >= len(d.Stations) || t.ArrStationID >= len(d.Stations) {
			return nil, fmt.Errorf("transfer %d: unknown station", i)
		}
		if err := transferEnc.Append(int64(t.DepStationID), int64(t.ArrStationID), int64(t.Minutes)); err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
	}
	out.Transfers = transferEnc.Bytes()

	for key, day := range d.Days {
		enc, err := encodeDay(in, day, len(d.Routes), stopCount)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", key, err)
		}
		out.Days[key] = enc
	}

	if len(in.strings) > math.MaxUint16+1 {
		return nil, fmt.Errorf("%d distinct strings: %w", len(in.strings), flatbuf.ErrOutOfRange)
	}
	out.Strings = in.strings
	return out, nil
}

func encodeDay(in *stringInterner, day DayData, routeCount, stopCount int) (EncodedDay, error) {
	trips := flatbuf.NewEncoder(TripLayout)
	for i, t := range day.Trips {
		if t.RouteID < 0 || t.RouteID >= routeCount {
			return EncodedDay{}, fmt.Errorf("trip %d: unknown route %d", i, t.RouteID)
		}
		if err := trips.Append(int64(t.RouteID), int64(in.intern(t.Destination))); err != nil {
			return EncodedDay{}, fmt.Errorf("trip %d: %w", i, err)
		}
	}

	conns := make([]ConnectionData, len(day.Connections))
	copy(conns, day.Connections)
	sort.SliceStable(conns, func(i, j int) bool {
		a, b := conns[i], conns[j]
		if a.DepMins != b.DepMins {
			return a.DepMins > b.DepMins
		}
		if a.ArrMins != b.ArrMins {
			return a.ArrMins > b.ArrMins
		}
		return a.TripPos > b.TripPos
	})

	byTrip := make([][]int, len(day.Trips))
	connEnc := flatbuf.NewEncoder(ConnectionLayout)
	for id, c := range conns {
		if c.TripID < 0 || c.TripID >= len(day.Trips) {
			return EncodedDay{}, fmt.Errorf("connection %d: unknown trip %d", id, c.TripID)
		}
		if c.DepStopID >= stopCount || c.ArrStopID >= stopCount {
			return EncodedDay{}, fmt.Errorf("connection %d: unknown stop", id)
		}
		tripPos, err := packing.Pack24x8(c.TripID, c.TripPos)
		if err != nil {
			return EncodedDay{}, fmt.Errorf("connection %d: %w", id, err)
		}
		if err := connEnc.Append(int64(c.DepStopID), int64(c.DepMins), int64(c.ArrStopID), int64(c.ArrMins), int64(tripPos)); err != nil {
			return EncodedDay{}, fmt.Errorf("connection %d: %w", id, err)
		}
		byTrip[c.TripID] = append(byTrip[c.TripID], id)
	}

	next := make([]int, len(conns))
	for tripID, ids := range byTrip {
		if len(ids) > MaxTripLength {
			return EncodedDay{}, fmt.Errorf("trip %d has %d connections: %w", tripID, len(ids), flatbuf.ErrOutOfRange)
		}
		sort.Slice(ids, func(i, j int) bool { return conns[ids[i]].TripPos < conns[ids[j]].TripPos })
		for i, id := range ids {
			if conns[id].TripPos != i {
				return EncodedDay{}, fmt.Errorf("trip %d: connection at position %d found at index %d", tripID, conns[id].TripPos, i)
			}
			next[id] = ids[(i+1)%len(ids)]
		}
	}
	succ := flatbuf.NewEncoder(SuccessorLayout)
	for _, n := range next {
		if err := succ.Append(int64(n)); err != nil {
			return EncodedDay{}, err
		}
	}

	return EncodedDay{Trips: trips.Bytes(), Connections: connEnc.Bytes(), Successors: succ.Bytes()}, nil
}

// WriteDir writes the dataset files under root, one subdirectory per service day.
func (e *Encoded) WriteDir(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return err
	}
	if err := writeStrings(filepath.Join(root, StringsFile), e.Strings); err != nil {
		return err
	}
	files := map[string][]byte{
		StationsFile:       e.Stations,
		StationAliasesFile: e.Aliases,
		PlatformsFile:      e.Platforms,
		RoutesFile:         e.Routes,
		TransfersFile:      e.Transfers,
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(root, name), data, 0o644); err != nil {
			return err
		}
	}
	for key, day := range e.Days {
		dir := filepath.Join(root, key)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		dayFiles := map[string][]byte{
			TripsFile:                day.Trips,
			ConnectionsFile:          day.Connections,
			ConnectionSuccessorsFile: day.Successors,
		}
		for name, data := range dayFiles {
			if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeStrings(path string, table []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i, s := range table {
		if strings.ContainsAny(s, "\r\n") {
			f.Close()
			return fmt.Errorf("string %d contains a line break", i)
		}
		if _, err := w.WriteString(s + "\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
