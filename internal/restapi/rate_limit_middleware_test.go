package restapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/models"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func request(handler http.Handler, key string) *httptest.ResponseRecorder {
	target := "/"
	if key != "" {
		target += "?key=" + key
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func trackedKeys(rl *RateLimitMiddleware) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimitMiddleware(2, time.Minute, nil, nil)
	defer rl.Stop()
	handler := rl.Handler()(okHandler())

	assert.Equal(t, http.StatusOK, request(handler, "alpha").Code)
	assert.Equal(t, http.StatusOK, request(handler, "alpha").Code)

	rec := request(handler, "alpha")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	var body models.ResponseModel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusTooManyRequests, body.Code)
	assert.Equal(t, "rate limit exceeded, please try again later", body.Text)

	// Keys have separate buckets.
	assert.Equal(t, http.StatusOK, request(handler, "beta").Code)
}

func TestRateLimitMiddlewareAnonymousRequestsShareABucket(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Minute, nil, nil)
	defer rl.Stop()
	handler := rl.Handler()(okHandler())

	assert.Equal(t, http.StatusOK, request(handler, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(handler, "").Code)
}

func TestRateLimitMiddlewareExemptKeys(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Minute, []string{" ops "}, nil)
	defer rl.Stop()
	handler := rl.Handler()(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, request(handler, "ops").Code)
	}
	assert.Zero(t, trackedKeys(rl))
}

func TestRateLimitMiddlewareLimits(t *testing.T) {
	t.Run("zero rejects everything", func(t *testing.T) {
		rl := NewRateLimitMiddleware(0, time.Second, nil, nil)
		defer rl.Stop()
		rec := request(rl.Handler()(okHandler()), "k")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	})

	t.Run("negative disables limiting", func(t *testing.T) {
		rl := NewRateLimitMiddleware(-1, time.Second, nil, nil)
		defer rl.Stop()
		handler := rl.Handler()(okHandler())
		for i := 0; i < 50; i++ {
			require.Equal(t, http.StatusOK, request(handler, "k").Code)
		}
	})
}

func TestRateLimitMiddlewareSweep(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rl := NewRateLimitMiddleware(10, time.Second, nil, clk)
	defer rl.Stop()
	handler := rl.Handler()(okHandler())

	request(handler, "old")
	clk.Advance(6 * time.Minute)
	request(handler, "recent")
	require.Equal(t, 2, trackedKeys(rl))

	clk.Advance(5 * time.Minute)
	rl.sweep()
	assert.Equal(t, 1, trackedKeys(rl))

	rl.mu.RLock()
	_, ok := rl.limiters["recent"]
	rl.mu.RUnlock()
	assert.True(t, ok)
}

func TestRateLimitMiddlewareStopIsIdempotent(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Second, nil, nil)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestProtectedEndpointsAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 1
	api := createTestApiWithConfig(t, cfg)

	resp, _ := serveAndRetrieveEndpoint(t, api, "/api/where/current-time.json?key=TEST")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, model := serveAndRetrieveEndpoint(t, api, "/api/where/current-time.json?key=TEST")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, model.Code)
}
