package journey

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"journeyplanner.org/internal/criteria"
	"journeyplanner.org/internal/packing"
	"journeyplanner.org/internal/profile"
	"journeyplanner.org/internal/router"
	"journeyplanner.org/internal/timetable"
)

type extractor struct {
	p           *profile.Profile
	tt          timetable.Timetable
	conns       *timetable.Connections
	trips       *timetable.Trips
	midnight    time.Time
	destination int
}

// Journeys decodes every tuple of the frontier of depStationID into a journey to the
// destination of p, sorted by departure then arrival time. A station with an empty
// frontier yields no journeys.
func Journeys(p *profile.Profile, depStationID int) ([]Journey, error) {
	front := p.ForStation(depStationID)
	if front.IsEmpty() {
		return nil, nil
	}

	tt := p.Timetable()
	conns, err := tt.ConnectionsFor(p.Date())
	if err != nil {
		return nil, err
	}
	trips, err := tt.TripsFor(p.Date())
	if err != nil {
		return nil, err
	}
	d := p.Date()
	e := &extractor{
		p:           p,
		tt:          tt,
		conns:       conns,
		trips:       trips,
		midnight:    time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()),
		destination: p.ArrStationID(),
	}

	journeys := make([]Journey, 0, front.Size())
	var errs []error
	front.ForEach(func(c criteria.Criteria) {
		j, err := e.journey(depStationID, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("decoding %v: %w", c, err))
			return
		}
		journeys = append(journeys, j)
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	sort.SliceStable(journeys, func(i, k int) bool {
		a, b := journeys[i], journeys[k]
		if !a.DepTime().Equal(b.DepTime()) {
			return a.DepTime().Before(b.DepTime())
		}
		return a.ArrTime().Before(b.ArrTime())
	})
	return journeys, nil
}

// at resolves wall-clock minutes of the service day, so DST transition days keep
// their local times.
func (e *extractor) at(mins int) time.Time {
	m := e.midnight
	return time.Date(m.Year(), m.Month(), m.Day(), 0, mins, 0, 0, m.Location())
}

func (e *extractor) stop(stopID int) Stop {
	stationID := timetable.StationID(e.tt, stopID)
	stations := e.tt.Stations()
	return Stop{
		Name:         stations.Name(stationID),
		PlatformName: timetable.PlatformName(e.tt, stopID),
		Longitude:    stations.Longitude(stationID),
		Latitude:     stations.Latitude(stationID),
	}
}

func (e *extractor) foot(fromStop, toStop, depMins, minutes int) Foot {
	return Foot{
		From:      e.stop(fromStop),
		Departure: e.at(depMins),
		To:        e.stop(toStop),
		Arrival:   e.at(depMins + minutes),
	}
}

// ride follows the trip from the connection encoded in payload and returns the leg with
// the last connection used.
func (e *extractor) ride(payload uint32) (Transport, int) {
	id := packing.Unpack24(payload)
	hops := packing.Unpack8(payload)

	leg := Transport{
		From:      e.stop(e.conns.DepStopID(id)),
		Departure: e.at(e.conns.DepMins(id)),
	}
	for i := 0; i < hops; i++ {
		next := e.conns.NextConnectionID(id)
		leg.Intermediates = append(leg.Intermediates, IntermediateStop{
			Stop:    e.stop(e.conns.ArrStopID(id)),
			ArrTime: e.at(e.conns.ArrMins(id)),
			DepTime: e.at(e.conns.DepMins(next)),
		})
		id = next
	}
	tripID := e.conns.TripID(id)
	routeID := e.trips.RouteID(tripID)
	leg.To = e.stop(e.conns.ArrStopID(id))
	leg.Arrival = e.at(e.conns.ArrMins(id))
	leg.Vehicle = e.tt.Routes().Vehicle(routeID)
	leg.Route = e.tt.Routes().Name(routeID)
	leg.Destination = e.trips.Destination(tripID)
	return leg, id
}

func (e *extractor) journey(depStationID int, c criteria.Criteria) (Journey, error) {
	var legs []Leg
	arrMins := c.ArrMins()
	changes := c.Changes()
	payload := c.Payload()

	first := packing.Unpack24(payload)
	if boarding := e.conns.DepStopID(first); boarding != depStationID {
		minutes, err := router.WalkMinutes(e.tt, depStationID, boarding)
		if err != nil {
			return Journey{}, err
		}
		legs = append(legs, e.foot(depStationID, boarding, c.DepMins(), minutes))
	}

	leg, last := e.ride(payload)
	legs = append(legs, leg)

	for changes > 0 {
		changes--
		alight := e.conns.ArrStopID(last)
		alightMins := e.conns.ArrMins(last)
		next, err := e.continuation(timetable.StationID(e.tt, alight), arrMins, changes)
		if err != nil {
			return Journey{}, err
		}
		arrMins, changes = next.ArrMins(), next.Changes()

		boarding := e.conns.DepStopID(packing.Unpack24(next.Payload()))
		minutes, err := router.WalkMinutes(e.tt, alight, boarding)
		if err != nil {
			return Journey{}, err
		}
		legs = append(legs, e.foot(alight, boarding, alightMins, minutes))

		leg, last = e.ride(next.Payload())
		legs = append(legs, leg)
	}

	if alight := e.conns.ArrStopID(last); alight != e.destination {
		minutes, err := router.WalkMinutes(e.tt, alight, e.destination)
		if err != nil {
			return Journey{}, err
		}
		legs = append(legs, e.foot(alight, e.destination, e.conns.ArrMins(last), minutes))
	}

	return New(legs)
}

// continuation returns the tuple with exactly the journey's arrival and remaining
// changes at stationID. Its absence means the profile is inconsistent.
func (e *extractor) continuation(stationID, arrMins, changes int) (criteria.Criteria, error) {
	c, err := e.p.ForStation(stationID).Get(arrMins, changes)
	if err != nil {
		return 0, fmt.Errorf("no continuation at station %d arriving at %d with %d changes: %w", stationID, arrMins, changes, err)
	}
	return c, nil
}
