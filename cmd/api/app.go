package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"journeyplanner.org/internal/app"
	"journeyplanner.org/internal/appconf"
	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/logging"
	"journeyplanner.org/internal/metrics"
	"journeyplanner.org/internal/restapi"
	"journeyplanner.org/internal/timetable"
	"journeyplanner.org/internal/webui"
)

const (
	shutdownTimeout       = 30 * time.Second
	cacheSizeScrapePeriod = 15 * time.Second
)

// ParseAPIKeys splits a comma separated key list. Empty entries are kept so that a
// malformed list fails authentication instead of being silently shortened.
func ParseAPIKeys(apiKeysFlag string) []string {
	if apiKeysFlag == "" {
		return []string{}
	}
	keys := strings.Split(apiKeysFlag, ",")
	for i, key := range keys {
		keys[i] = strings.TrimSpace(key)
	}
	return keys
}

// BuildApplication opens the dataset in cfg.DataDir and wires the application around it.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	logger := logging.NewDefault(cfg.Verbose)
	slog.SetDefault(logger)

	tt, err := timetable.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open timetable: %w", err)
	}

	clk := clock.NewEnvironmentClock("JOURNEYPLANNER_NOW", time.UTC)
	coreApp, err := app.New(cfg, tt, logger, clk, metrics.NewWithLogger(logger))
	if err != nil {
		logging.SafeCloseWithLogging(tt, logger, "timetable")
		return nil, err
	}
	return coreApp, nil
}

// CreateServer builds the HTTP server with the API, debug pages and metrics endpoint.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	mux := http.NewServeMux()

	api := restapi.NewRestAPI(coreApp)
	api.SetRoutes(mux)

	webUI := &webui.WebUI{Application: coreApp}
	webUI.SetWebUIRoutes(mux)

	mux.Handle("GET /metrics", promhttp.HandlerFor(coreApp.Metrics.Registry, promhttp.HandlerOpts{}))

	// The metrics middleware wraps the mux directly so it sees the matched pattern.
	var handler http.Handler = restapi.MetricsHandler(coreApp.Metrics)(mux)
	handler = gzhttp.GzipHandler(handler)
	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}
	return srv, api
}

// Run serves until ctx is cancelled, then drains connections and releases the
// application's resources.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := coreApp.Logger
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	coreApp.Metrics.StartCacheSizeCollector(coreApp.Profiles.Len, cacheSizeScrapePeriod)

	serveErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "server_started",
			slog.String("addr", ln.Addr().String()),
			slog.String("env", coreApp.Config.Env.String()))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logging.LogOperation(logger, "server_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}

	api.Shutdown()
	coreApp.Metrics.Shutdown()
	if c, ok := coreApp.Timetable.(io.Closer); ok {
		logging.SafeCloseWithLogging(c, logger, "timetable")
	}

	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if err == nil {
		logging.LogOperation(logger, "server_stopped")
	}
	return err
}
