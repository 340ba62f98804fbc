// Package retention implements the trailing-window policy applied to the
// locally cached logs.
package retention

import "time"

// DefaultWindow is the trailing period records are kept for.
const DefaultWindow = 30 * 24 * time.Hour

// Policy keeps records whose timestamp falls inside a trailing window.
//
// The policy is applied after every log mutation, never on read and never
// on a timer: an expired record survives on disk until the next write to
// its log.
type Policy struct {
	Window time.Duration
}

// Default returns the standard 30-day policy.
func Default() Policy {
	return Policy{Window: DefaultWindow}
}

// Cutoff returns the oldest epoch-millisecond timestamp still retained
// relative to now.
func (p Policy) Cutoff(now time.Time) int64 {
	window := p.Window
	if window <= 0 {
		window = DefaultWindow
	}
	return now.Add(-window).UnixMilli()
}

// Keep reports whether a record timestamp (epoch ms) is inside the window.
func (p Policy) Keep(now time.Time, timestamp int64) bool {
	return timestamp >= p.Cutoff(now)
}
