// Package flock provides cross-platform file locking utilities.
//
// The run-lock marker uses these primitives to tell a crashed run apart
// from a live one: the holder keeps an exclusive lock on the marker for
// the run's duration, and the staleness sweep probes it with a
// non-blocking attempt before any eviction. Locks are exclusive and
// non-blocking on both Unix and Windows systems.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
//
// HeldElsewhere wraps the probe pattern: it attempts the lock, releases
// it again on success, and reports whether a holder was found.
package flock
