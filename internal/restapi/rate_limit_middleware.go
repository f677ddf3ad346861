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

	"github.com/ia560/busplanner/internal/clock"
	"github.com/ia560/busplanner/internal/models"
)

const (
	anonymousKey       = "__no_key__"
	limiterIdleTimeout = 10 * time.Minute
	limiterSweepEvery  = 5 * time.Minute
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// RateLimitMiddleware limits requests per API key. Requests without a key
// share one bucket.
type RateLimitMiddleware struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter

	limit  rate.Limit
	burst  int
	exempt map[string]bool
	clock  clock.Clock

	sweep    *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRateLimitMiddleware allows requestsPer requests per interval and key,
// with bursts of the same size. Zero blocks every request; a negative value
// disables limiting.
func NewRateLimitMiddleware(requestsPer int, interval time.Duration, exemptKeys []string, c clock.Clock) *RateLimitMiddleware {
	var limit rate.Limit
	switch {
	case requestsPer < 0:
		limit = rate.Inf
	case requestsPer == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(requestsPer))
	}

	exempt := make(map[string]bool, len(exemptKeys))
	for _, k := range exemptKeys {
		if k = strings.TrimSpace(k); k != "" {
			exempt[k] = true
		}
	}
	if c == nil {
		c = clock.RealClock{}
	}

	rl := &RateLimitMiddleware{
		limiters: make(map[string]*keyLimiter),
		limit:    limit,
		burst:    max(requestsPer, 0),
		exempt:   exempt,
		clock:    c,
		sweep:    time.NewTicker(limiterSweepEvery),
		stopChan: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Handler returns the middleware.
func (rl *RateLimitMiddleware) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Query().Get("key")
			if key == "" {
				key = anonymousKey
			}
			if !rl.exempt[key] && !rl.limiterFor(key).Allow() {
				rl.sendTooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
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

func (rl *RateLimitMiddleware) retryAfter() time.Duration {
	switch rl.limit {
	case 0:
		return time.Hour
	case rate.Inf:
		return time.Second
	default:
		return max(time.Duration(float64(time.Second)/float64(rl.limit)), time.Second)
	}
}

func (rl *RateLimitMiddleware) sendTooManyRequests(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Retry-After", strconv.Itoa(int(rl.retryAfter().Seconds())))
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
	h.Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	response := models.ResponseModel{
		Code:        http.StatusTooManyRequests,
		CurrentTime: rl.clock.NowUnixMilli(),
		Text:        "Rate limit exceeded. Please try again later.",
		Version:     2,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("failed to encode rate limit response", slog.String("error", err.Error()))
	}
}

// evictIdle drops limiters of keys not seen for limiterIdleTimeout.
func (rl *RateLimitMiddleware) evictIdle() {
	cutoff := rl.clock.Now().Add(-limiterIdleTimeout).UnixNano()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, kl := range rl.limiters {
		if seen := kl.lastSeen.Load(); seen != 0 && seen < cutoff {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimitMiddleware) sweepLoop() {
	for {
		select {
		case <-rl.sweep.C:
			rl.evictIdle()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the eviction goroutine. It may be called more than once.
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
		rl.sweep.Stop()
	})
}
