// Package clock abstracts the wall clock so that "leave now" queries can be
// tested with a fixed time.
package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Clock tells the current time.
type Clock interface {
	Now() time.Time
	NowUnixMilli() int64
}

// RealClock reads the system time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) NowUnixMilli() int64 { return time.Now().UnixMilli() }

// MockClock is a settable clock for tests. It is safe for concurrent use.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock returns a MockClock stopped at t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) NowUnixMilli() int64 {
	return m.Now().UnixMilli()
}

// Set moves the clock to t.
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

// PinnedClock reads the current time from an environment variable, then from
// a file, and falls back to the system time. It lets a deployment replay a
// schedule at a chosen moment. Both sources are read on every call; the
// fallback is logged once each time the clock switches to it.
type PinnedClock struct {
	envVar   string
	filePath string
	location *time.Location
	logger   *slog.Logger
	fallback atomic.Bool
}

// NewPinnedClock returns a PinnedClock. Times without a zone offset are read
// in location; a nil location only accepts RFC 3339.
func NewPinnedClock(envVar, filePath string, location *time.Location) *PinnedClock {
	return &PinnedClock{
		envVar:   envVar,
		filePath: filePath,
		location: location,
		logger:   slog.Default().With(slog.String("component", "clock")),
	}
}

func (p *PinnedClock) Now() time.Time {
	if t, ok := p.pinned(); ok {
		if p.fallback.CompareAndSwap(true, false) {
			p.logger.Info("pinned_time_restored")
		}
		return t
	}
	if p.fallback.CompareAndSwap(false, true) {
		p.logger.Warn("pinned_time_unavailable_using_system_time",
			slog.String("env_var", p.envVar),
			slog.String("file", p.filePath))
	}
	return time.Now()
}

func (p *PinnedClock) pinned() (time.Time, bool) {
	if p.envVar != "" {
		if v := os.Getenv(p.envVar); v != "" {
			if t, err := p.parse(v); err == nil {
				return t, true
			}
		}
	}
	if p.filePath != "" {
		if data, err := os.ReadFile(p.filePath); err == nil {
			if t, err := p.parse(string(data)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func (p *PinnedClock) NowUnixMilli() int64 {
	return p.Now().UnixMilli()
}

var pinnedLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (p *PinnedClock) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if p.location == nil {
		return time.Time{}, errors.New("clock: time zone not configured")
	}
	for _, layout := range pinnedLayouts {
		if t, err := time.ParseInLocation(layout, s, p.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("clock: cannot parse %q", s)
}
