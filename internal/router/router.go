// Package router computes profiles with the Connection Scan Algorithm.
//
// Connections of the day are scanned once, latest departure first. For each connection
// the router derives the Pareto-optimal outcomes of boarding it (stay aboard, alight and
// walk to the destination, alight and change) and propagates them to every station from
// which the connection's departure stop can be reached on foot.
package router

import (
	"fmt"
	"log/slog"
	"time"

	"journeyplanner.org/internal/criteria"
	"journeyplanner.org/internal/packing"
	"journeyplanner.org/internal/pareto"
	"journeyplanner.org/internal/profile"
	"journeyplanner.org/internal/timetable"
)

const maxConnections = 1 << 24

// Observer receives statistics about profile computations.
type Observer interface {
	ObserveProfile(duration time.Duration, connections int)
}

// Router computes profiles over one timetable. It holds no per-query state and may be
// used concurrently.
type Router struct {
	tt       timetable.Timetable
	logger   *slog.Logger
	observer Observer
	// skipDominated avoids propagating connections whose outcomes the departure
	// station already dominates.
	skipDominated bool
}

type Option func(*Router)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

func WithObserver(o Observer) Option {
	return func(r *Router) { r.observer = o }
}

func New(tt timetable.Timetable, opts ...Option) *Router {
	r := &Router{
		tt:            tt,
		logger:        slog.Default().With(slog.String("component", "router")),
		skipDominated: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WalkMinutes returns the walking time between the stations of two stops. A station
// without a transfer to itself is left in zero minutes.
func WalkMinutes(tt timetable.Timetable, fromStopID, toStopID int) (int, error) {
	from := timetable.StationID(tt, fromStopID)
	to := timetable.StationID(tt, toStopID)
	m, err := tt.Transfers().MinutesBetween(from, to)
	if err != nil && from == to {
		return 0, nil
	}
	return m, err
}

// Profile computes, for every station, the Pareto-optimal ways of reaching arrStationID
// on date. It fails only if the day is not available or the timetable is too large.
func (r *Router) Profile(date time.Time, arrStationID int) (*profile.Profile, error) {
	start := time.Now()

	conns, err := r.tt.ConnectionsFor(date)
	if err != nil {
		return nil, err
	}
	if conns.Size() > maxConnections {
		return nil, fmt.Errorf("%d connections exceed the payload range", conns.Size())
	}
	builder, err := profile.NewBuilder(r.tt, date, arrStationID)
	if err != nil {
		return nil, err
	}

	transfers := r.tt.Transfers()
	walkToDest := r.walkTimesTo(arrStationID)

	local := pareto.NewBuilder()
	var propagated []criteria.Criteria
	for id := 0; id < conns.Size(); id++ {
		depStation := timetable.StationID(r.tt, conns.DepStopID(id))
		arrStation := timetable.StationID(r.tt, conns.ArrStopID(id))
		depMins := conns.DepMins(id)
		arrMins := conns.ArrMins(id)
		tripID := conns.TripID(id)

		local.Clear()

		if walk := walkToDest[arrStation]; walk >= 0 {
			if c, err := criteria.Pack(arrMins+walk, 0, uint32(id)); err == nil {
				local.Add(c)
			}
		}

		trip := builder.ForTrip(tripID)
		if trip != nil {
			local.AddAll(trip)
		}

		if station := builder.ForStation(arrStation); station != nil {
			station.ForEach(func(t criteria.Criteria) {
				if t.DepMins() >= arrMins && t.Changes() < criteria.MaxChanges {
					local.Add(t.WithoutDepMins().WithAdditionalChange().WithPayload(uint32(id)))
				}
			})
		}

		if local.IsEmpty() {
			continue
		}

		if trip == nil {
			trip = pareto.NewBuilder()
			builder.SetForTrip(tripID, trip)
		}
		trip.AddAll(local)

		if station := builder.ForStation(depStation); r.skipDominated && station != nil && station.FullyDominates(local, depMins) {
			continue
		}

		propagated = propagated[:0]
		tripPos := conns.TripPos(id)
		var packErr error
		local.ForEach(func(t criteria.Criteria) {
			alight := int(t.Payload())
			payload, err := packing.Pack24x8(id, conns.TripPos(alight)-tripPos)
			if err != nil {
				packErr = err
				return
			}
			propagated = append(propagated, t.WithPayload(payload))
		})
		if packErr != nil {
			return nil, fmt.Errorf("connection %d: %w", id, packErr)
		}

		arriving := transfers.ArrivingAt(depStation)
		selfTransfer := false
		for tr := arriving.Start(); tr < arriving.End(); tr++ {
			from := transfers.DepStationID(tr)
			selfTransfer = selfTransfer || from == depStation
			r.propagate(builder, from, depMins-transfers.Minutes(tr), propagated)
		}
		if !selfTransfer {
			r.propagate(builder, depStation, depMins, propagated)
		}
	}

	p := builder.Build()
	elapsed := time.Since(start)
	r.logger.Debug("profile computed",
		slog.String("date", timetable.DayKey(date)),
		slog.Int("destination", arrStationID),
		slog.Int("connections", conns.Size()),
		slog.Duration("duration", elapsed))
	if r.observer != nil {
		r.observer.ObserveProfile(elapsed, conns.Size())
	}
	return p, nil
}

func (r *Router) propagate(builder *profile.Builder, stationID, depMins int, tuples []criteria.Criteria) {
	if depMins < criteria.MinMins {
		return
	}
	station := builder.ForStation(stationID)
	if station == nil {
		station = pareto.NewBuilder()
		builder.SetForStation(stationID, station)
	}
	for _, t := range tuples {
		station.Add(t.WithDepMins(depMins))
	}
}

// walkTimesTo returns, per station, the walking time to the destination, or -1 if there
// is no transfer.
func (r *Router) walkTimesTo(arrStationID int) []int {
	transfers := r.tt.Transfers()
	walk := make([]int, r.tt.Stations().Size())
	for i := range walk {
		walk[i] = -1
	}
	walk[arrStationID] = 0
	arriving := transfers.ArrivingAt(arrStationID)
	for tr := arriving.Start(); tr < arriving.End(); tr++ {
		walk[transfers.DepStationID(tr)] = transfers.Minutes(tr)
	}
	return walk
}
