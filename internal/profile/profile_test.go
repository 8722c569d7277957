package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/criteria"
	"journeyplanner.org/internal/pareto"
	"journeyplanner.org/internal/timetable"
	"journeyplanner.org/internal/timetable/timetabletest"
)

func fixture(t *testing.T) timetable.Timetable {
	b := timetabletest.New()
	a := b.Station("A", 0, 0)
	c := b.Station("C", 0, 0)
	r := b.Route("1", timetable.Bus)
	b.Trip(timetabletest.Date, r, "C", timetabletest.At(a, 0, 600), timetabletest.At(c, 610, 610))
	return b.Build(t)
}

func TestBuilder(t *testing.T) {
	tt := fixture(t)
	b, err := NewBuilder(tt, timetabletest.Date, 1)
	require.NoError(t, err)

	assert.Nil(t, b.ForStation(0))
	assert.Nil(t, b.ForTrip(0))
	assert.Panics(t, func() { b.ForStation(2) })
	assert.Panics(t, func() { b.ForTrip(1) })

	f := pareto.NewBuilder()
	f.Add(criteria.MustPack(610, 0, 0).WithDepMins(600))
	b.SetForStation(0, f)
	b.SetForTrip(0, pareto.NewBuilder())
	assert.Same(t, f, b.ForStation(0))

	p := b.Build()
	assert.Equal(t, 1, p.ArrStationID())
	assert.Equal(t, timetabletest.Date, p.Date())
	assert.Same(t, tt, p.Timetable())
	assert.Equal(t, 1, p.ForStation(0).Size())
	assert.True(t, p.ForStation(1).IsEmpty())

	f.Add(criteria.MustPack(605, 0, 0).WithDepMins(600))
	assert.Equal(t, 1, p.ForStation(0).Size())
	got, err := p.ForStation(0).Get(610, 0)
	require.NoError(t, err)
	assert.Equal(t, 600, got.DepMins())
}

func TestNewBuilderErrors(t *testing.T) {
	tt := fixture(t)

	_, err := NewBuilder(tt, timetabletest.Date.AddDate(0, 0, 1), 1)
	assert.ErrorIs(t, err, timetable.ErrDayNotAvailable)

	_, err = NewBuilder(tt, timetabletest.Date, 5)
	assert.Error(t, err)
}
