// Package stationindex answers nearest-station queries over a timetable.
package stationindex

import (
	"sort"

	"github.com/tidwall/rtree"

	"journeyplanner.org/internal/geo"
	"journeyplanner.org/internal/timetable"
)

// Match is a station found by a proximity query.
type Match struct {
	StationID int
	Distance  float64
}

// Index is an immutable spatial index of station coordinates.
type Index struct {
	tree     rtree.RTreeG[int]
	stations *timetable.Stations
}

// New indexes every station of tt.
func New(tt timetable.Timetable) *Index {
	idx := &Index{stations: tt.Stations()}
	for id := 0; id < idx.stations.Size(); id++ {
		p := [2]float64{idx.stations.Longitude(id), idx.stations.Latitude(id)}
		idx.tree.Insert(p, p, id)
	}
	return idx
}

func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Nearby returns the stations within radiusMeters of the point, closest first, ties broken
// by station id. At most max matches are returned; max <= 0 means no limit.
func (idx *Index) Nearby(lat, lon, radiusMeters float64, max int) []Match {
	b := geo.BoundsAround(lat, lon, radiusMeters)

	var matches []Match
	idx.tree.Search([2]float64{b.MinLon, b.MinLat}, [2]float64{b.MaxLon, b.MaxLat},
		func(_, _ [2]float64, id int) bool {
			d := geo.Distance(lat, lon, idx.stations.Latitude(id), idx.stations.Longitude(id))
			if d <= radiusMeters {
				matches = append(matches, Match{StationID: id, Distance: d})
			}
			return true
		})

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].StationID < matches[j].StationID
	})
	if max > 0 && len(matches) > max {
		matches = matches[:max]
	}
	return matches
}

// Within calls fn for every station whose coordinates fall inside b. Iteration stops when
// fn returns false.
func (idx *Index) Within(b geo.Bounds, fn func(stationID int) bool) {
	idx.tree.Search([2]float64{b.MinLon, b.MinLat}, [2]float64{b.MaxLon, b.MaxLat},
		func(_, _ [2]float64, id int) bool {
			return fn(id)
		})
}
