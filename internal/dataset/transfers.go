package dataset

import (
	"log/slog"
	"math"
	"sort"

	"github.com/OneBusAway/go-gtfs"
	"github.com/tidwall/rtree"

	"journeyplanner.org/internal/geo"
	"journeyplanner.org/internal/timetable"
)

const transferNotPossible = 3

type stationPair struct{ dep, arr int }

type transferSource int

const (
	sourceWalking transferSource = iota
	sourceSelf
	sourceFeed
)

type candidate struct {
	minutes int
	source  transferSource
}

// addTransfers derives the station-level transfers: a change within every station, the
// feed's own transfers lifted to stations, and walking links between nearby stations.
// Feed transfers override derived ones. When more transfers than a station can hold
// arrive at it, the shortest are kept.
func (b *builder) addTransfers(feed []gtfs.Transfer, opts Options) {
	best := make(map[stationPair]candidate)
	offer := func(p stationPair, c candidate) {
		if c.minutes > maxTransferMinutes {
			c.minutes = maxTransferMinutes
		}
		cur, ok := best[p]
		switch {
		case !ok, c.source > cur.source:
			best[p] = c
		case c.source == cur.source && c.minutes < cur.minutes:
			best[p] = c
		}
	}

	for id := range b.data.Stations {
		offer(stationPair{id, id}, candidate{minutes: opts.ChangeMinutes, source: sourceSelf})
	}
	b.addWalkingLinks(opts, offer)

	for _, t := range feed {
		if t.From == nil || t.To == nil || int(t.Type) == transferNotPossible {
			continue
		}
		from, okFrom := b.stops[t.From.Id]
		to, okTo := b.stops[t.To.Id]
		if !okFrom || !okTo {
			continue
		}
		p := stationPair{b.stationOf(from), b.stationOf(to)}
		var m int
		switch {
		case t.MinTransferTime != nil:
			m = int(math.Ceil(float64(*t.MinTransferTime) / 60))
		case p.dep == p.arr:
			m = opts.ChangeMinutes
		default:
			s, e := b.data.Stations[p.dep], b.data.Stations[p.arr]
			m = geo.WalkingMinutes(geo.Distance(s.Latitude, s.Longitude, e.Latitude, e.Longitude), opts.WalkMetersPerMinute)
		}
		offer(p, candidate{minutes: m, source: sourceFeed})
	}

	byArrival := make(map[int][]timetable.TransferData)
	for p, c := range best {
		byArrival[p.arr] = append(byArrival[p.arr], timetable.TransferData{DepStationID: p.dep, ArrStationID: p.arr, Minutes: c.minutes})
	}
	for arr := range b.data.Stations {
		group := byArrival[arr]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Minutes != group[j].Minutes {
				return group[i].Minutes < group[j].Minutes
			}
			return group[i].DepStationID < group[j].DepStationID
		})
		if len(group) > maxTransfersPerStop {
			b.logger.Warn("dropping longest transfers",
				slog.String("station", b.data.Stations[arr].Name),
				slog.Int("transfers", len(group)),
				slog.Int("kept", maxTransfersPerStop))
			group = keepShortest(group, arr)
		}
		sort.Slice(group, func(i, j int) bool { return group[i].DepStationID < group[j].DepStationID })
		b.data.Transfers = append(b.data.Transfers, group...)
	}
}

// keepShortest truncates a group sorted by duration, keeping the change within the
// station itself.
func keepShortest(group []timetable.TransferData, station int) []timetable.TransferData {
	kept := make([]timetable.TransferData, 0, maxTransfersPerStop)
	for _, t := range group {
		if t.DepStationID == station {
			kept = append(kept, t)
		}
	}
	for _, t := range group {
		if len(kept) == maxTransfersPerStop {
			break
		}
		if t.DepStationID != station {
			kept = append(kept, t)
		}
	}
	return kept
}

func (b *builder) addWalkingLinks(opts Options, offer func(stationPair, candidate)) {
	if opts.WalkRadiusMeters <= 0 {
		return
	}
	var tree rtree.RTreeG[int]
	for id, s := range b.data.Stations {
		p := [2]float64{s.Longitude, s.Latitude}
		tree.Insert(p, p, id)
	}
	for id, s := range b.data.Stations {
		box := geo.BoundsAround(s.Latitude, s.Longitude, opts.WalkRadiusMeters)
		tree.Search([2]float64{box.MinLon, box.MinLat}, [2]float64{box.MaxLon, box.MaxLat},
			func(_, _ [2]float64, other int) bool {
				if other == id {
					return true
				}
				o := b.data.Stations[other]
				d := geo.Distance(s.Latitude, s.Longitude, o.Latitude, o.Longitude)
				if d <= opts.WalkRadiusMeters {
					offer(stationPair{id, other}, candidate{minutes: geo.WalkingMinutes(d, opts.WalkMetersPerMinute), source: sourceWalking})
				}
				return true
			})
	}
}
