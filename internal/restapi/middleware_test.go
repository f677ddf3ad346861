package restapi

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ia560/busplanner/internal/clock"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"missing", "", false},
		{"valid", "trace-42.a:b_c", true},
		{"exactly 128 characters", strings.Repeat("a", 128), true},
		{"too long", strings.Repeat("a", 129), false},
		{"invalid characters", "bad-id-<script>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest("GET", "/foo", nil)
			if tt.incoming != "" {
				req.Header.Set("X-Request-ID", tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.Regexp(t, `^[0-9a-f-]{36}$`, seen)
			}
		})
	}
}

func TestRequestLoggingIncludesRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := RequestIDMiddleware(NewRequestLoggingMiddleware(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})))

	req := httptest.NewRequest("GET", "/logged", nil)
	req.Header.Set("X-Request-ID", "integration-test-id-999")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := logBuf.String()
	assert.Contains(t, out, `"request_id":"integration-test-id-999"`)
	assert.Contains(t, out, `"status":202`)
	assert.Contains(t, out, `"component":"http_server"`)
	assert.Contains(t, out, `"path":"/logged"`)
}

func TestCacheControlHeaders(t *testing.T) {
	api := createTestApi(t)

	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{"long cache", "/api/where/stops.json?key=TEST", "public, max-age=300"},
		{"short cache", "/api/where/plan.json?key=TEST&from=Downtown&to=Mall&day=monday", "public, max-age=30"},
		{"no cache", "/api/where/current-time.json?key=TEST", "no-cache, no-store, must-revalidate"},
		{"error response", "/api/where/plan.json?key=TEST&from=Downtown", "no-cache, no-store, must-revalidate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := serveApiAndRetrieveBody(t, api, tt.endpoint)
			assert.Equal(t, tt.expected, resp.Header.Get("Cache-Control"))
		})
	}
}

func TestCompressionMiddleware(t *testing.T) {
	large := strings.Repeat(`{"stop": "Downtown"}`, 500)
	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(large))
	}))

	t.Run("gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.Less(t, rec.Body.Len(), len(large))

		reader, err := gzip.NewReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()
		plain, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, large, string(plain))
	})

	t.Run("gzip not accepted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, large, rec.Body.String())
	})

	t.Run("small responses stay plain", func(t *testing.T) {
		small := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		small.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
	})
}

func rateLimitedStatus(t *testing.T, handler http.Handler, key string) int {
	t.Helper()
	target := "/api/where/current-time.json"
	if key != "" {
		target += "?key=" + key
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", target, nil))
	return rec.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	mock := clock.NewMockClock(mondayMorning)
	rl := NewRateLimitMiddleware(2, time.Minute, []string{"exempt", " "}, mock)
	defer rl.Stop()

	handler := rl.Handler()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, rateLimitedStatus(t, handler, "alice"))
	assert.Equal(t, http.StatusOK, rateLimitedStatus(t, handler, "alice"))
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedStatus(t, handler, "alice"))

	// Keys have separate buckets; missing keys share one.
	assert.Equal(t, http.StatusOK, rateLimitedStatus(t, handler, "bob"))
	assert.Equal(t, http.StatusOK, rateLimitedStatus(t, handler, ""))
	assert.Equal(t, http.StatusOK, rateLimitedStatus(t, handler, ""))
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedStatus(t, handler, ""))

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedStatus(t, handler, "exempt"))
	}
}

func TestRateLimitMiddleware_ExceededResponse(t *testing.T) {
	mock := clock.NewMockClock(mondayMorning)
	rl := NewRateLimitMiddleware(1, time.Second, nil, mock)
	defer rl.Stop()
	handler := rl.Handler()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rateLimitedStatus(t, handler, "k")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x?key=k", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, rec.Body.String(), `"code":429`)
	assert.Contains(t, rec.Body.String(), `"currentTime":1792395000000`)
}

func TestRateLimitMiddleware_ZeroAndNegativeRates(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	blocked := NewRateLimitMiddleware(0, time.Second, nil, nil)
	defer blocked.Stop()
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedStatus(t, blocked.Handler()(ok), "k"))

	unlimited := NewRateLimitMiddleware(-1, time.Second, nil, nil)
	defer unlimited.Stop()
	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, rateLimitedStatus(t, unlimited.Handler()(ok), "k"))
	}
}

func TestRateLimitMiddleware_EvictsIdleKeys(t *testing.T) {
	mock := clock.NewMockClock(mondayMorning)
	rl := NewRateLimitMiddleware(5, time.Second, nil, mock)
	defer rl.Stop()

	rl.limiterFor("old")
	mock.Advance(6 * time.Minute)
	rl.limiterFor("recent")
	mock.Advance(5 * time.Minute)

	rl.evictIdle()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.limiters, "old")
	assert.Contains(t, rl.limiters, "recent")
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewRateLimitMiddleware(1, time.Second, nil, nil)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
