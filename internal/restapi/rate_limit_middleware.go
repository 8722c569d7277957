package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"journeyplanner.org/internal/clock"
	"journeyplanner.org/internal/models"
)

const (
	anonymousKey       = "__no_key__"
	limiterIdleTimeout = 10 * time.Minute
	limiterSweepPeriod = 5 * time.Minute
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // Unix nanoseconds
}

// RateLimitMiddleware limits requests per API key with a token bucket. Limiters idle for
// longer than ten minutes are dropped by a background sweep until Stop is called.
type RateLimitMiddleware struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter

	limit  rate.Limit
	burst  int
	exempt map[string]bool
	clock  clock.Clock

	ticker   *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimitMiddleware allows requests per interval for each key, with bursts of the
// same size. A zero count rejects every request; a negative one disables limiting.
func NewRateLimitMiddleware(requests int, interval time.Duration, exemptKeys []string, clk clock.Clock) *RateLimitMiddleware {
	var limit rate.Limit
	switch {
	case requests < 0:
		limit = rate.Inf
	case requests == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(requests))
	}
	if clk == nil {
		clk = clock.RealClock{}
	}

	rl := &RateLimitMiddleware{
		limiters: make(map[string]*keyLimiter),
		limit:    limit,
		burst:    requests,
		exempt:   make(map[string]bool),
		clock:    clk,
		ticker:   time.NewTicker(limiterSweepPeriod),
		stop:     make(chan struct{}),
	}
	for _, k := range exemptKeys {
		if k = strings.TrimSpace(k); k != "" {
			rl.exempt[k] = true
		}
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Query().Get("key")
			if key == "" {
				key = anonymousKey
			}
			if rl.exempt[key] || rl.limiterFor(key).Allow() {
				next.ServeHTTP(w, r)
				return
			}
			rl.reject(w, r)
		})
	}
}

func (rl *RateLimitMiddleware) limiterFor(key string) *rate.Limiter {
	now := rl.clock.Now().UnixNano()

	rl.mu.RLock()
	kl, ok := rl.limiters[key]
	rl.mu.RUnlock()
	if ok {
		kl.lastSeen.Store(now)
		return kl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if kl, ok = rl.limiters[key]; !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = kl
	}
	kl.lastSeen.Store(now)
	return kl.limiter
}

func (rl *RateLimitMiddleware) reject(w http.ResponseWriter, r *http.Request) {
	retryAfter := time.Second
	if rl.limit == 0 {
		retryAfter = time.Hour
	} else if d := time.Duration(float64(time.Second) / float64(rl.limit)); rl.limit != rate.Inf && d > retryAfter {
		retryAfter = d
	}

	setJSONResponseType(w)
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	resp := models.NewResponse(http.StatusTooManyRequests, nil, "rate limit exceeded, please try again later", rl.clock)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode rate limit response", slog.Any("error", err))
	}
}

// sweep drops limiters not used within limiterIdleTimeout.
func (rl *RateLimitMiddleware) sweep() {
	cutoff := rl.clock.Now().Add(-limiterIdleTimeout).UnixNano()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, kl := range rl.limiters {
		if kl.lastSeen.Load() < cutoff {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) sweepLoop() {
	for {
		select {
		case <-rl.ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
		rl.ticker.Stop()
	})
}
