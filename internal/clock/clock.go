// Package clock abstracts wall-clock reads behind an interface so that
// run timestamps and lock staleness math can be pinned in tests instead
// of racing the real clock.
package clock

import "time"

// Clock supplies the time operations the pipeline depends on.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// Since returns the elapsed time since t.
	// Lock staleness checks depend on this being mockable.
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock. Production wiring uses this; tests
// substitute a fixed implementation.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the elapsed wall-clock time since t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}
