// Package clock abstracts the current time so that service-day resolution can be tested.
package clock

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a settable clock for tests. It is safe for concurrent use.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock by d, which may be negative.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// EnvironmentClock reads the current time from an environment variable, falling back to
// the system clock when the variable is unset or unparsable. It lets a deployment serve
// a frozen timetable snapshot as if it were today.
type EnvironmentClock struct {
	envVar   string
	location *time.Location
}

func NewEnvironmentClock(envVar string, location *time.Location) *EnvironmentClock {
	if location == nil {
		location = time.UTC
	}
	return &EnvironmentClock{envVar: envVar, location: location}
}

func (e *EnvironmentClock) Now() time.Time {
	value := strings.TrimSpace(os.Getenv(e.envVar))
	if value == "" {
		return time.Now()
	}
	t, err := ParseTime(value, e.location)
	if err != nil {
		slog.Warn("ignoring unparsable clock override",
			slog.String("env_var", e.envVar), slog.String("value", value), slog.Any("error", err))
		return time.Now()
	}
	return t
}

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTime accepts RFC 3339 times and zone-less date-times interpreted in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse time %q", s)
}

// ServiceDate returns midnight of the current day in loc.
func ServiceDate(c Clock, loc *time.Location) time.Time {
	now := c.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}
