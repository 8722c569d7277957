package dataset

import (
	"time"

	"github.com/OneBusAway/go-gtfs"
)

// serviceActive reports whether a GTFS service runs on date. Calendar exceptions take
// precedence over the weekly pattern.
func serviceActive(s *gtfs.Service, date time.Time) bool {
	key := dateKey(date)
	for _, d := range s.RemovedDates {
		if dateKey(d) == key {
			return false
		}
	}
	for _, d := range s.AddedDates {
		if dateKey(d) == key {
			return true
		}
	}
	if s.StartDate.IsZero() || key < dateKey(s.StartDate) || key > dateKey(s.EndDate) {
		return false
	}
	switch date.Weekday() {
	case time.Monday:
		return s.Monday
	case time.Tuesday:
		return s.Tuesday
	case time.Wednesday:
		return s.Wednesday
	case time.Thursday:
		return s.Thursday
	case time.Friday:
		return s.Friday
	case time.Saturday:
		return s.Saturday
	default:
		return s.Sunday
	}
}

func dateKey(t time.Time) string {
	return t.Format("20060102")
}
