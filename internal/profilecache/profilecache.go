// Package profilecache keeps recently computed profiles in memory.
//
// Entries are keyed by service day and destination station, evicted least recently used
// first and expire after a fixed time to live. Concurrent requests for the same key share
// a single computation.
package profilecache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"

	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/profile"
	"journeyplanner.org/internal/timetable"
)

// Computer produces profiles. *router.Router satisfies it.
type Computer interface {
	Profile(date time.Time, arrStationID int) (*profile.Profile, error)
}

// Recorder counts cache lookups. *metrics.Metrics satisfies it.
type Recorder interface {
	CacheHit()
	CacheMiss()
}

type key struct {
	day     string
	station int
}

type entry struct {
	profile *profile.Profile
	expires time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	computer Computer
	ttl      time.Duration
	clock    clock.Clock
	recorder Recorder
	logger   *slog.Logger

	mu      sync.Mutex
	entries *lru.Cache
	group   singleflight.Group
}

type Option func(*Cache)

func WithClock(c clock.Clock) Option {
	return func(pc *Cache) { pc.clock = c }
}

func WithRecorder(r Recorder) Option {
	return func(pc *Cache) { pc.recorder = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(pc *Cache) { pc.logger = logger }
}

// New returns a cache holding at most size profiles, each for at most ttl. A size below
// one disables storage but still coalesces concurrent computations; a zero ttl never
// expires entries.
func New(computer Computer, size int, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		computer: computer,
		ttl:      ttl,
		clock:    clock.RealClock{},
		logger:   slog.Default().With(slog.String("component", "profile_cache")),
	}
	if size > 0 {
		c.entries = lru.New(size)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the profile towards arrStationID on date, computing it on a miss. The
// context only bounds the wait: a computation already started by another caller keeps
// running.
func (c *Cache) Get(ctx context.Context, date time.Time, arrStationID int) (*profile.Profile, error) {
	k := key{day: timetable.DayKey(date), station: arrStationID}

	if p, ok := c.lookup(k); ok {
		c.hit()
		return p, nil
	}
	c.miss()

	ch := c.group.DoChan(fmt.Sprintf("%s/%d", k.day, k.station), func() (interface{}, error) {
		if p, ok := c.lookup(k); ok {
			return p, nil
		}
		p, err := c.computer.Profile(date, arrStationID)
		if err != nil {
			return nil, err
		}
		c.store(k, p)
		return p, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("shared profile computation",
				slog.String("date", k.day), slog.Int("station_id", k.station))
		}
		return res.Val.(*profile.Profile), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of cached profiles, expired ones included until they are touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Clear drops every cached profile.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries != nil {
		c.entries.Clear()
	}
}

func (c *Cache) lookup(k key) (*profile.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		return nil, false
	}
	v, ok := c.entries.Get(k)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if c.ttl > 0 && !c.clock.Now().Before(e.expires) {
		c.entries.Remove(k)
		return nil, false
	}
	return e.profile, true
}

func (c *Cache) store(k key, p *profile.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		return
	}
	c.entries.Add(k, entry{profile: p, expires: c.clock.Now().Add(c.ttl)})
}

func (c *Cache) hit() {
	if c.recorder != nil {
		c.recorder.CacheHit()
	}
}

func (c *Cache) miss() {
	if c.recorder != nil {
		c.recorder.CacheMiss()
	}
}
