package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/packing"
	"journeyplanner.org/internal/timetable"
	"journeyplanner.org/internal/timetable/timetabletest"
)

const (
	stationA = iota
	stationB
	stationC
	stationD
)

// network has a direct bus A-B-C, a faster tram B-C reachable by changing at B, and a
// train A-D from where C is a short walk.
func network(t *testing.T) timetable.Timetable {
	b := timetabletest.New()
	for _, name := range []string{"A", "B", "C", "D"} {
		s := b.Station(name, 46.5, 6.6)
		b.Walk(s, s, 2)
	}
	b.Walk(stationD, stationC, 4)
	b.Walk(stationC, stationD, 4)

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

type observation struct {
	calls       int
	connections int
}

func (o *observation) ObserveProfile(_ time.Duration, connections int) {
	o.calls++
	o.connections = connections
}

func TestProfile(t *testing.T) {
	tt := network(t)
	obs := &observation{}
	p, err := New(tt, WithObserver(obs)).Profile(timetabletest.Date, stationC)
	require.NoError(t, err)

	assert.Equal(t, 1, obs.calls)
	assert.Equal(t, 4, obs.connections)
	assert.Equal(t, stationC, p.ArrStationID())

	atB := p.ForStation(stationB)
	require.Equal(t, 1, atB.Size())
	c, err := atB.Get(500, 0)
	require.NoError(t, err)
	assert.Equal(t, 493, c.DepMins())

	atA := p.ForStation(stationA)
	require.Equal(t, 3, atA.Size())

	train, err := atA.Get(489, 0)
	require.NoError(t, err)
	assert.Equal(t, 468, train.DepMins())
	assert.Equal(t, 0, packing.Unpack8(train.Payload()))

	bus, err := atA.Get(502, 0)
	require.NoError(t, err)
	assert.Equal(t, 478, bus.DepMins())
	assert.Equal(t, 1, packing.Unpack8(bus.Payload()), "stays aboard past B")

	change, err := atA.Get(500, 1)
	require.NoError(t, err)
	assert.Equal(t, 478, change.DepMins())
	assert.Equal(t, packing.Unpack24(bus.Payload()), packing.Unpack24(change.Payload()))

	assert.True(t, p.ForStation(stationC).IsEmpty())
	assert.True(t, p.ForStation(stationD).IsEmpty())
}

func TestProfileWithoutDominanceShortcutIsIdentical(t *testing.T) {
	tt := network(t)
	for _, dest := range []int{stationC, stationD} {
		fast, err := New(tt).Profile(timetabletest.Date, dest)
		require.NoError(t, err)

		slow := New(tt)
		slow.skipDominated = false
		reference, err := slow.Profile(timetabletest.Date, dest)
		require.NoError(t, err)

		for s := 0; s < tt.Stations().Size(); s++ {
			assert.Equal(t, reference.ForStation(s), fast.ForStation(s), "destination %d station %d", dest, s)
		}
	}
}

func TestProfileWithoutSelfTransfers(t *testing.T) {
	b := timetabletest.New()
	x := b.Station("X", 0, 0)
	m := b.Station("M", 0, 0)
	y := b.Station("Y", 0, 0)
	z := b.Station("Z", 0, 0)
	b.Walk(x, z, 5)
	bus := b.Route("9", timetable.Bus)
	b.Trip(timetabletest.Date, bus, "Y", timetabletest.At(x, 600, 600), timetabletest.At(y, 620, 620))
	b.Trip(timetabletest.Date, bus, "M", timetabletest.At(x, 560, 560), timetabletest.At(m, 570, 570))
	b.Trip(timetabletest.Date, bus, "Y", timetabletest.At(m, 575, 575), timetabletest.At(y, 590, 590))
	tt := b.Build(t)

	p, err := New(tt).Profile(timetabletest.Date, y)
	require.NoError(t, err)

	tests := []struct {
		name    string
		station int
		arr     int
		changes int
		dep     int
	}{
		{name: "direct to destination", station: x, arr: 620, changes: 0, dep: 600},
		{name: "change without transfer time", station: x, arr: 590, changes: 1, dep: 560},
		{name: "boarding at change station", station: m, arr: 590, changes: 0, dep: 575},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := p.ForStation(tc.station).Get(tc.arr, tc.changes)
			require.NoError(t, err)
			assert.Equal(t, tc.dep, c.DepMins())
		})
	}
	assert.Equal(t, 2, p.ForStation(x).Size())
	assert.True(t, p.ForStation(y).IsEmpty())
	assert.True(t, p.ForStation(z).IsEmpty())
}

func TestProfileErrors(t *testing.T) {
	tt := network(t)
	r := New(tt)

	_, err := r.Profile(timetabletest.Date.AddDate(0, 0, 1), stationC)
	assert.ErrorIs(t, err, timetable.ErrDayNotAvailable)

	_, err = r.Profile(timetabletest.Date, 17)
	assert.Error(t, err)
}

func TestWalkMinutes(t *testing.T) {
	b := timetabletest.New()
	x := b.Station("X", 0, 0)
	y := b.Station("Y", 0, 0)
	z := b.Station("Z", 0, 0)
	px := b.Platform(x, "1")
	b.Walk(x, x, 3)
	b.Walk(x, y, 7)
	tt := b.Build(t)

	m, err := WalkMinutes(tt, px, x)
	require.NoError(t, err)
	assert.Equal(t, 3, m)

	m, err = WalkMinutes(tt, px, y)
	require.NoError(t, err)
	assert.Equal(t, 7, m)

	m, err = WalkMinutes(tt, z, z)
	require.NoError(t, err)
	assert.Equal(t, 0, m)

	_, err = WalkMinutes(tt, y, x)
	assert.ErrorIs(t, err, timetable.ErrNotFound)
}
