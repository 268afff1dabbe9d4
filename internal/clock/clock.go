// Package clock provides an abstraction for time operations to improve
// testability. Instead of calling time.Now() directly, code can use the Clock
// interface, which can be swapped for a fixed clock in tests to control
// time-dependent behavior (transition timestamps, backup suffixes, revision
// metadata).
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Fixed is a Clock that always returns the same instant. Useful in tests
// that assert on timestamps in history records.
type Fixed struct {
	// Time is the instant returned by Now.
	Time time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time {
	return f.Time
}

// Ensure both implementations satisfy Clock.
var (
	_ Clock = RealClock{}
	_ Clock = Fixed{}
)
