package journey

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/criteria"
	"journeyplanner.org/internal/packing"
	"journeyplanner.org/internal/pareto"
	"journeyplanner.org/internal/profile"
	"journeyplanner.org/internal/router"
	"journeyplanner.org/internal/timetable"
	"journeyplanner.org/internal/timetable/timetabletest"
)

const (
	stationA = iota
	stationB
	stationC
	stationD
)

func network(t *testing.T) timetable.Timetable {
	b := timetabletest.New()
	for _, name := range []string{"A", "B", "C", "D"} {
		s := b.Station(name, 46.5, 6.6)
		b.Walk(s, s, 2)
	}
	b.Walk(stationD, stationC, 4)

	bus := b.Route("1", timetable.Bus)
	tram := b.Route("2", timetable.Tram)
	train := b.Route("3", timetable.Train)
	b.Trip(timetabletest.Date, bus, "C",
		timetabletest.At(stationA, 480, 480),
		timetabletest.At(stationB, 490, 491),
		timetabletest.At(stationC, 500, 500))
	b.Trip(timetabletest.Date, tram, "C",
		timetabletest.At(stationB, 495, 495),
		timetabletest.At(stationC, 498, 498))
	b.Trip(timetabletest.Date, train, "D",
		timetabletest.At(stationA, 470, 470),
		timetabletest.At(stationD, 485, 485))
	return b.Build(t)
}

func TestJourneys(t *testing.T) {
	tt := network(t)
	p, err := router.New(tt).Profile(timetabletest.Date, stationC)
	require.NoError(t, err)

	journeys, err := Journeys(p, stationA)
	require.NoError(t, err)
	require.Len(t, journeys, 3)

	train := journeys[0]
	assert.Equal(t, at(470), train.DepTime())
	assert.Equal(t, at(489), train.ArrTime())
	legs := train.Legs()
	require.Len(t, legs, 2)
	ride := legs[0].(Transport)
	assert.Equal(t, timetable.Train, ride.Vehicle)
	assert.Equal(t, "3", ride.Route)
	assert.Equal(t, "D", ride.Destination)
	walk := legs[1].(Foot)
	assert.Equal(t, "D", walk.From.Name)
	assert.Equal(t, "C", walk.To.Name)
	assert.False(t, walk.IsTransfer())

	change := journeys[1]
	assert.Equal(t, at(480), change.DepTime())
	assert.Equal(t, at(498), change.ArrTime())
	assert.Equal(t, 1, change.Changes())
	legs = change.Legs()
	require.Len(t, legs, 3)
	assert.Equal(t, "B", legs[0].ArrStop().Name)
	assert.True(t, legs[1].(Foot).IsTransfer())
	assert.Equal(t, at(492), legs[1].ArrTime())
	assert.Equal(t, "2", legs[2].(Transport).Route)

	direct := journeys[2]
	assert.Equal(t, at(480), direct.DepTime())
	assert.Equal(t, at(500), direct.ArrTime())
	legs = direct.Legs()
	require.Len(t, legs, 1)
	stops := legs[0].IntermediateStops()
	require.Len(t, stops, 1)
	assert.Equal(t, "B", stops[0].Stop.Name)
	assert.Equal(t, at(490), stops[0].ArrTime)
	assert.Equal(t, at(491), stops[0].DepTime)

	for _, j := range journeys {
		assertValid(t, j)
	}
}

func TestJourneysStartWithWalkToPlatform(t *testing.T) {
	b := timetabletest.New()
	x := b.Station("X", 46.0, 6.0)
	y := b.Station("Y", 46.1, 6.1)
	px := b.Platform(x, "4")
	b.Walk(x, x, 3)
	b.Walk(y, y, 1)
	r := b.Route("M1", timetable.Metro)
	b.Trip(timetabletest.Date, r, "Y", timetabletest.At(px, 600, 600), timetabletest.At(y, 610, 610))
	tt := b.Build(t)

	p, err := router.New(tt).Profile(timetabletest.Date, y)
	require.NoError(t, err)
	journeys, err := Journeys(p, x)
	require.NoError(t, err)
	require.Len(t, journeys, 1)

	legs := journeys[0].Legs()
	require.Len(t, legs, 2)
	walk := legs[0].(Foot)
	assert.True(t, walk.IsTransfer())
	assert.Equal(t, at(597), walk.Departure)
	assert.Equal(t, at(600), walk.Arrival)
	assert.Equal(t, "4", walk.To.PlatformName)
	assert.Equal(t, at(610), journeys[0].ArrTime())
	assert.InDelta(t, 46.1, journeys[0].ArrStop().Latitude, 1e-6)
}

func TestJourneysFromUnreachableStation(t *testing.T) {
	tt := network(t)
	p, err := router.New(tt).Profile(timetabletest.Date, stationC)
	require.NoError(t, err)

	journeys, err := Journeys(p, stationD)
	require.NoError(t, err)
	assert.Empty(t, journeys)
}

func TestJourneysAreSorted(t *testing.T) {
	b := timetabletest.New()
	x := b.Station("X", 0, 0)
	y := b.Station("Y", 0, 0)
	b.Walk(x, x, 1)
	b.Walk(y, y, 1)
	r := b.Route("7", timetable.Bus)
	for _, dep := range []int{720, 600, 660, 540} {
		b.Trip(timetabletest.Date, r, "Y", timetabletest.At(x, dep, dep), timetabletest.At(y, dep+30, dep+30))
	}
	tt := b.Build(t)

	p, err := router.New(tt).Profile(timetabletest.Date, y)
	require.NoError(t, err)
	journeys, err := Journeys(p, x)
	require.NoError(t, err)
	require.Len(t, journeys, 4)
	for i := 1; i < len(journeys); i++ {
		assert.True(t, journeys[i-1].DepTime().Before(journeys[i].DepTime()))
	}
}

func TestJourneysKeepWallClockOnDSTChange(t *testing.T) {
	zurich, err := time.LoadLocation("Europe/Zurich")
	require.NoError(t, err)
	// Clocks go forward at 02:00 on this day.
	date := time.Date(2026, time.March, 29, 0, 0, 0, 0, zurich)

	b := timetabletest.New()
	x := b.Station("X", 47.37, 8.54)
	y := b.Station("Y", 47.38, 8.55)
	b.Walk(x, x, 1)
	b.Walk(y, y, 1)
	r := b.Route("31", timetable.Bus)
	b.Trip(date, r, "Y", timetabletest.At(x, 480, 480), timetabletest.At(y, 510, 510))
	tt := b.Build(t)

	p, err := router.New(tt).Profile(date, y)
	require.NoError(t, err)
	journeys, err := Journeys(p, x)
	require.NoError(t, err)
	require.Len(t, journeys, 1)

	dep := journeys[0].DepTime()
	arr := journeys[0].ArrTime()
	assert.True(t, dep.Equal(time.Date(2026, time.March, 29, 8, 0, 0, 0, zurich)), "departure %s", dep)
	assert.True(t, arr.Equal(time.Date(2026, time.March, 29, 8, 30, 0, 0, zurich)), "arrival %s", arr)
	assert.Equal(t, 8, dep.In(zurich).Hour())
	assert.Equal(t, 30*time.Minute, arr.Sub(dep))
}

func TestJourneysFailOnMissingContinuation(t *testing.T) {
	tt := network(t)
	conns, err := tt.ConnectionsFor(timetabletest.Date)
	require.NoError(t, err)
	busAB := -1
	for id := 0; id < conns.Size(); id++ {
		if conns.DepStopID(id) == stationA && conns.ArrStopID(id) == stationB {
			busAB = id
		}
	}
	require.NotEqual(t, -1, busAB)
	payload, err := packing.Pack24x8(busAB, 0)
	require.NoError(t, err)

	tests := []struct {
		name  string
		front []criteria.Criteria
	}{
		{name: "empty front"},
		{
			name: "only a different tuple",
			front: []criteria.Criteria{
				criteria.MustPack(499, 0, payload).WithDepMins(491),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := profile.NewBuilder(tt, timetabletest.Date, stationC)
			require.NoError(t, err)
			origin := pareto.NewBuilder()
			origin.Add(criteria.MustPack(500, 1, payload).WithDepMins(480))
			b.SetForStation(stationA, origin)
			if len(tc.front) > 0 {
				atB := pareto.NewBuilder()
				for _, c := range tc.front {
					atB.Add(c)
				}
				b.SetForStation(stationB, atB)
			}

			journeys, err := Journeys(b.Build(), stationA)
			assert.ErrorIs(t, err, pareto.ErrNotFound)
			assert.Empty(t, journeys)
		})
	}
}

func assertValid(t *testing.T, j Journey) {
	t.Helper()
	legs := j.Legs()
	for i := 1; i < len(legs); i++ {
		_, prevFoot := legs[i-1].(Foot)
		_, foot := legs[i].(Foot)
		assert.NotEqual(t, prevFoot, foot)
		assert.Equal(t, legs[i-1].ArrStop(), legs[i].DepStop())
		assert.False(t, legs[i].DepTime().Before(legs[i-1].ArrTime()))
	}
}
