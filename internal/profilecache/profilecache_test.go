package profilecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/profile"
	"journeyplanner.org/internal/router"
	"journeyplanner.org/internal/timetable"
	"journeyplanner.org/internal/timetable/timetabletest"
)

type countingComputer struct {
	router *router.Router
	calls  atomic.Int32
	gate   chan struct{}
}

func (c *countingComputer) Profile(date time.Time, arrStationID int) (*profile.Profile, error) {
	c.calls.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	return c.router.Profile(date, arrStationID)
}

type counter struct{ hits, misses atomic.Int32 }

func (c *counter) CacheHit()  { c.hits.Add(1) }
func (c *counter) CacheMiss() { c.misses.Add(1) }

func newComputer(t *testing.T) *countingComputer {
	b := timetabletest.New()
	a := b.Station("A", 46.50, 6.60)
	bb := b.Station("B", 46.51, 6.61)
	b.Station("C", 46.52, 6.62)
	bus := b.Route("1", timetable.Bus)
	b.Trip(timetabletest.Date, bus, "B", timetabletest.At(a, 480, 480), timetabletest.At(bb, 490, 490))
	return &countingComputer{router: router.New(b.Build(t))}
}

func TestGetCachesProfiles(t *testing.T) {
	comp := newComputer(t)
	rec := &counter{}
	c := New(comp, 4, time.Hour, WithRecorder(rec))

	first, err := c.Get(context.Background(), timetabletest.Date, 1)
	require.NoError(t, err)
	second, err := c.Get(context.Background(), timetabletest.Date, 1)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), comp.calls.Load())
	assert.Equal(t, int32(1), rec.hits.Load())
	assert.Equal(t, int32(1), rec.misses.Load())
	assert.Equal(t, 1, c.Len())

	_, err = c.Get(context.Background(), timetabletest.Date, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), comp.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestGetEvictsLeastRecentlyUsed(t *testing.T) {
	comp := newComputer(t)
	c := New(comp, 2, 0)
	ctx := context.Background()

	for _, station := range []int{0, 1, 0, 2, 0, 1} {
		_, err := c.Get(ctx, timetabletest.Date, station)
		require.NoError(t, err)
	}
	// 0 and 1 computed, 0 hit, 2 evicts 1, 0 hit, 1 evicts 2.
	assert.Equal(t, int32(4), comp.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestGetExpiresEntries(t *testing.T) {
	comp := newComputer(t)
	mock := clock.NewMockClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	c := New(comp, 4, 10*time.Minute, WithClock(mock))
	ctx := context.Background()

	_, err := c.Get(ctx, timetabletest.Date, 1)
	require.NoError(t, err)
	mock.Advance(9 * time.Minute)
	_, err = c.Get(ctx, timetabletest.Date, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), comp.calls.Load())

	mock.Advance(time.Minute)
	_, err = c.Get(ctx, timetabletest.Date, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), comp.calls.Load())
}

func TestGetPropagatesErrorsWithoutCaching(t *testing.T) {
	comp := newComputer(t)
	c := New(comp, 4, time.Hour)
	missing := timetabletest.Date.AddDate(0, 0, 1)

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), missing, 1)
		assert.True(t, errors.Is(err, timetable.ErrDayNotAvailable))
	}
	assert.Equal(t, int32(2), comp.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestGetCoalescesConcurrentComputations(t *testing.T) {
	comp := newComputer(t)
	comp.gate = make(chan struct{})
	c := New(comp, 4, time.Hour)

	const callers = 8
	results := make([]*profile.Profile, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.Get(context.Background(), timetabletest.Date, 1)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}

	require.Eventually(t, func() bool { return comp.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the remaining callers a chance to join the in-flight computation.
	time.Sleep(20 * time.Millisecond)
	close(comp.gate)
	wg.Wait()

	assert.Equal(t, int32(1), comp.calls.Load())
	for _, p := range results {
		assert.Same(t, results[0], p)
	}
}

func TestGetHonoursContext(t *testing.T) {
	comp := newComputer(t)
	comp.gate = make(chan struct{})
	defer close(comp.gate)
	c := New(comp, 4, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Get(ctx, timetabletest.Date, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClearAndDisabledStorage(t *testing.T) {
	comp := newComputer(t)
	c := New(comp, 4, time.Hour)
	_, err := c.Get(context.Background(), timetabletest.Date, 1)
	require.NoError(t, err)
	c.Clear()
	assert.Equal(t, 0, c.Len())

	disabled := New(comp, 0, time.Hour)
	for i := 0; i < 2; i++ {
		_, err := disabled.Get(context.Background(), timetabletest.Date, 1)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, disabled.Len())
	assert.Equal(t, int32(3), comp.calls.Load())
}
