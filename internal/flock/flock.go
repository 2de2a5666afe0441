// Package flock provides cross-platform file locking utilities.
package flock

// HeldElsewhere reports whether another open file description holds an
// exclusive lock on the descriptor. It probes with a non-blocking attempt
// and releases the lock again when the attempt succeeds, so a false result
// leaves the descriptor unlocked.
func HeldElsewhere(fd uintptr) bool {
	if err := Exclusive(fd); err != nil {
		return true
	}
	_ = Unlock(fd)
	return false
}
