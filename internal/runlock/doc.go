// Package runlock enforces the single-flight guarantee for pipeline runs.
//
// One marker file guards the whole pipeline. Acquisition is an exclusive
// create (O_CREAT|O_EXCL) of the marker, which records the pid, run id, and
// start time of the holder. The holder also keeps an OS file lock on the
// marker for the run's duration, so the staleness sweep can tell a crashed
// run (old marker, no lock) apart from a slow one (old marker, lock still
// held) and never evicts a live holder.
//
// Usage:
//
//	mgr := runlock.NewManager(path, 30*time.Minute)
//	lock, err := mgr.Acquire(ctx, runID)
//	if errors.Is(err, apperrors.ErrLockHeld) {
//	    // another run is active; exit without touching anything
//	}
//	defer func() { _ = lock.Release() }()
package runlock
