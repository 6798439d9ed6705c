// Package engine is the temporal event-correlation core: it owns the
// session pseudo-clock, the fact store working memory, trend and suggestion
// evaluation, and publishing of derived values.
package engine

import (
	"errors"
	"math"
	"sync"
	"time"
)

// ErrClockRegression rejects an attempt to move a session's clock backward.
var ErrClockRegression = errors.New("clock regression: target time is before current time")

// Clock provides the external notion of "now" in Unix milliseconds.
// Two variants exist so the rest of the engine is clock-agnostic: a
// wall-clock pass-through and a scaled simulation clock.
type Clock interface {
	Now() int64
}

// SystemClock is the real-time Clock.
type SystemClock struct{}

func (SystemClock) Now() int64 { return time.Now().UnixMilli() }

// SimClock runs at a configurable multiple of wall-clock speed:
// simulatedNow = t0 + round((wallNow - t0) * speed).
type SimClock struct {
	t0    int64
	speed float64
}

// NewSimClock creates a simulation clock anchored at the current wall time.
func NewSimClock(speed float64) *SimClock {
	return &SimClock{t0: time.Now().UnixMilli(), speed: speed}
}

// NewSimClockAt anchors the simulation at a known epoch, so independent
// processes sharing t0 agree on simulated time.
func NewSimClockAt(t0 int64, speed float64) *SimClock {
	return &SimClock{t0: t0, speed: speed}
}

func (c *SimClock) Now() int64 {
	wall := time.Now().UnixMilli()
	return c.t0 + int64(math.Round(float64(wall-c.t0)*c.speed))
}

// T0 returns the anchor wall time the simulation started from.
func (c *SimClock) T0() int64 { return c.t0 }

// PseudoClock is a session's logical clock. It only moves forward, and only
// when explicitly advanced, so rule evaluation's notion of "now" is
// deterministic and decoupled from wall-clock jitter.
type PseudoClock struct {
	mu      sync.Mutex
	current int64
}

// Now returns the current logical time.
func (p *PseudoClock) Now() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// AdvanceTo moves logical time forward to target. Moving backward fails
// with ErrClockRegression and leaves the clock unchanged.
func (p *PseudoClock) AdvanceTo(target int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if target < p.current {
		return ErrClockRegression
	}
	p.current = target
	return nil
}
