// Package app wires the journey planner's shared dependencies.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"journeyplanner.org/internal/appconf"
	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/metrics"
	"journeyplanner.org/internal/profilecache"
	"journeyplanner.org/internal/router"
	"journeyplanner.org/internal/stationindex"
	"journeyplanner.org/internal/timetable"
)

// Application holds the dependencies of the HTTP handlers, helpers and middleware.
type Application struct {
	Config    appconf.Config
	Logger    *slog.Logger
	Clock     clock.Clock
	Metrics   *metrics.Metrics
	Timetable timetable.Timetable
	// Manifest is nil for timetables that do not come from a dataset directory.
	Manifest *timetable.Manifest
	// Location is the timezone service days are expressed in.
	Location *time.Location
	Router   *router.Router
	Profiles *profilecache.Cache
	Stations *stationindex.Index
}

// New builds an application serving tt. Logger, clock and metrics default to the process
// logger, the system clock and a fresh registry.
func New(cfg appconf.Config, tt timetable.Timetable, logger *slog.Logger, clk clock.Clock, m *metrics.Metrics) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if m == nil {
		m = metrics.NewWithLogger(logger)
	}

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Clock:     clk,
		Metrics:   m,
		Timetable: tt,
		Location:  time.UTC,
	}
	if withManifest, ok := tt.(interface{ Manifest() *timetable.Manifest }); ok {
		a.Manifest = withManifest.Manifest()
	}

	zone := cfg.Timezone
	if zone == "" && a.Manifest != nil {
		zone = a.Manifest.Timezone
	}
	if zone != "" {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", zone, err)
		}
		a.Location = loc
	}

	a.Router = router.New(tt,
		router.WithLogger(logger.With(slog.String("component", "router"))),
		router.WithObserver(m))
	a.Profiles = profilecache.New(a.Router, cfg.ProfileCacheSize, cfg.ProfileCacheTTL,
		profilecache.WithClock(clk),
		profilecache.WithRecorder(m),
		profilecache.WithLogger(logger.With(slog.String("component", "profile_cache"))))
	a.Stations = stationindex.New(tt)
	return a, nil
}

// ServiceDate returns today's service day in the dataset timezone.
func (app *Application) ServiceDate() time.Time {
	return clock.ServiceDate(app.Clock, app.Location)
}

// ParseServiceDate parses an ISO date in the dataset timezone. An empty string means today.
func (app *Application) ParseServiceDate(s string) (time.Time, error) {
	if s == "" {
		return app.ServiceDate(), nil
	}
	return time.ParseInLocation(time.DateOnly, s, app.Location)
}
