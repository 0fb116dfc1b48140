package mute

import (
	"sync/atomic"
	"time"
)

// MaxDuration is the longest window Mute accepts. Longer durations are clamped.
const MaxDuration = 365 * 24 * time.Hour

// MaxSeconds is MaxDuration in whole seconds
const MaxSeconds = int(MaxDuration / time.Second)

// Gate suppresses triggered replies until a deadline. It is safe for
// concurrent use; the latest call to Mute always wins.
type Gate struct {
	until atomic.Int64
	now   func() time.Time
}

// NewGate creates an open gate
func NewGate() *Gate {
	return NewGateWithClock(time.Now)
}

// NewGateWithClock creates an open gate reading time from now
func NewGateWithClock(now func() time.Time) *Gate {
	return &Gate{now: now}
}

// Mute closes the gate for d and returns the new deadline. A non-positive
// duration reopens the gate immediately.
func (g *Gate) Mute(d time.Duration) time.Time {
	if d > MaxDuration {
		d = MaxDuration
	}
	until := g.now().Add(d)
	g.until.Store(until.UnixNano())
	return until
}

// IsMuted reports whether the current time is strictly before the deadline
func (g *Gate) IsMuted() bool {
	until := g.until.Load()
	if until == 0 {
		return false
	}
	return g.now().UnixNano() < until
}

// Until returns the current deadline, or the zero time if the gate was never closed
func (g *Gate) Until() time.Time {
	until := g.until.Load()
	if until == 0 {
		return time.Time{}
	}
	return time.Unix(0, until)
}

// Remaining returns how long the gate stays closed
func (g *Gate) Remaining() time.Duration {
	if !g.IsMuted() {
		return 0
	}
	return time.Duration(g.until.Load() - g.now().UnixNano())
}
