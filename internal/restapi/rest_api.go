// Package restapi serves the journey planner over HTTP.
package restapi

import (
	"net/http"
	"time"

	"journeyplanner.org/internal/app"
)

// Cache lifetimes of the endpoint tiers, in seconds.
const (
	cacheStatic  = 300
	cacheJourney = 60
)

// RestAPI embeds the application so handlers reach its dependencies directly.
type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

func NewRestAPI(application *app.Application) *RestAPI {
	api := &RestAPI{Application: application}
	if application != nil {
		api.rateLimiter = NewRateLimitMiddleware(application.Config.RateLimit, time.Second, nil, application.Clock)
	}
	return api
}

// Shutdown stops background work started by the API.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

// SetRoutes registers the API endpoints on mux.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", api.healthHandler)

	mux.Handle("GET /api/where/current-time.json",
		api.protected(CacheControlMiddleware(0, http.HandlerFunc(api.currentTimeHandler))))
	mux.Handle("GET /api/where/journeys.json",
		api.protected(CacheControlMiddleware(cacheJourney, http.HandlerFunc(api.journeysHandler))))
	mux.Handle("GET /api/where/station.json",
		api.protected(CacheControlMiddleware(cacheStatic, http.HandlerFunc(api.stationHandler))))
	mux.Handle("GET /api/where/stations-for-location.json",
		api.protected(CacheControlMiddleware(cacheStatic, http.HandlerFunc(api.stationsForLocationHandler))))
}

// protected checks the API key, then the rate limit of that key.
func (api *RestAPI) protected(next http.Handler) http.Handler {
	limited := next
	if api.rateLimiter != nil {
		limited = api.rateLimiter.Handler()(next)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}
