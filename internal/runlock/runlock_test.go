package runlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/votewire/autopost/internal/errors"
)

const testStaleness = 30 * time.Minute

func markerPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "locks", "autopost.lock")
}

// writeStaleMarker plants an abandoned marker: present, old, and with
// nobody holding the OS lock.
func writeStaleMarker(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("pid=99999 run=crashed started=2026-01-01 00:00:00\n"), 0o600); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("backdate marker: %v", err)
	}
}

func readMarker(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //#nosec G304 -- test temp dir
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	return string(data)
}

// TestManagerAcquire_Fresh tests acquiring a lock with no existing marker.
func TestManagerAcquire_Fresh(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	mgr := NewManager(path, testStaleness)

	lock, err := mgr.Acquire(context.Background(), "run-0001")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if lock == nil {
		t.Fatal("Acquire returned nil lock")
	}
	if lock.Path() != path {
		t.Errorf("lock path = %q, want %q", lock.Path(), path)
	}

	record := readMarker(t, path)
	wantPrefix := fmt.Sprintf("pid=%d run=run-0001 started=", os.Getpid())
	if !strings.HasPrefix(record, wantPrefix) {
		t.Errorf("unexpected marker record %q, want prefix %q", record, wantPrefix)
	}
	if !strings.HasSuffix(record, "\n") {
		t.Errorf("marker record %q should end with a newline", record)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("marker should be removed on release, stat err = %v", err)
	}
}

// TestManagerAcquire_Held tests that a fresh marker blocks a second run.
func TestManagerAcquire_Held(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	first := NewManager(path, testStaleness)

	lock, err := first.Acquire(context.Background(), "run-held-a")
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	defer func() { _ = lock.Release() }()

	second := NewManager(path, testStaleness)
	contending, err := second.Acquire(context.Background(), "run-held-b")
	if !errors.Is(err, apperrors.ErrLockHeld) {
		t.Fatalf("second Acquire err = %v, want ErrLockHeld", err)
	}
	if contending != nil {
		t.Error("contending Acquire should not return a lock")
	}
	if !strings.Contains(err.Error(), "another run may still be active") {
		t.Errorf("err = %q, want mention of an active run", err)
	}
}

// TestManagerAcquire_StaleEvicted tests eviction of an abandoned marker.
func TestManagerAcquire_StaleEvicted(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	writeStaleMarker(t, path)

	mgr := NewManager(path, testStaleness)
	lock, err := mgr.Acquire(context.Background(), "run-evict")
	if err != nil {
		t.Fatalf("Acquire over stale marker: %v", err)
	}
	defer func() { _ = lock.Release() }()

	if record := readMarker(t, path); !strings.Contains(record, "run=run-evict") {
		t.Errorf("marker %q should belong to the new run", record)
	}
}

// TestManagerAcquire_StaleButLiveHolder tests that a slow run holding the OS
// lock survives the staleness sweep.
func TestManagerAcquire_StaleButLiveHolder(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	holder := NewManager(path, testStaleness)

	lock, err := holder.Acquire(context.Background(), "run-slow")
	if err != nil {
		t.Fatalf("holder Acquire: %v", err)
	}
	defer func() { _ = lock.Release() }()

	// Backdate the marker past the threshold while the holder's lock lives.
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("backdate marker: %v", err)
	}

	contender := NewManager(path, testStaleness)
	_, err = contender.Acquire(context.Background(), "run-sweeper")
	if !errors.Is(err, apperrors.ErrLockHeld) {
		t.Fatalf("contender Acquire err = %v, want ErrLockHeld", err)
	}
	if !strings.Contains(err.Error(), "holder is still running") {
		t.Errorf("err = %q, want mention of a running holder", err)
	}

	// The live holder's marker must survive the attempt.
	if record := readMarker(t, path); !strings.Contains(record, "run=run-slow") {
		t.Errorf("marker %q should still belong to the live holder", record)
	}
}

// TestManagerAcquire_ReacquireAfterRelease tests the release/acquire cycle.
func TestManagerAcquire_ReacquireAfterRelease(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	mgr := NewManager(path, testStaleness)

	lock, err := mgr.Acquire(context.Background(), "run-a")
	if err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	again, err := mgr.Acquire(context.Background(), "run-b")
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if err := again.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}

// TestManagerAcquire_CanceledContext tests the context guard.
func TestManagerAcquire_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mgr := NewManager(markerPath(t), testStaleness)
	if _, err := mgr.Acquire(ctx, "run-canceled"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Acquire err = %v, want context.Canceled", err)
	}
}

// TestLockRelease_Idempotent tests repeated and nil releases.
func TestLockRelease_Idempotent(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	mgr := NewManager(path, testStaleness)

	lock, err := mgr.Acquire(context.Background(), "run-release")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}

	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil Release should be a no-op, got %v", err)
	}
}

// TestManagerInspect_NoMarker tests inspecting an absent marker.
func TestManagerInspect_NoMarker(t *testing.T) {
	t.Parallel()

	mgr := NewManager(markerPath(t), testStaleness)

	state, err := mgr.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if state.Exists {
		t.Error("state.Exists = true for an absent marker")
	}
	if state.Stale {
		t.Error("state.Stale = true for an absent marker")
	}
	if state.Record != "" {
		t.Errorf("state.Record = %q, want empty", state.Record)
	}
}

// TestManagerInspect_FreshMarker tests inspecting a marker inside the
// staleness threshold.
func TestManagerInspect_FreshMarker(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	mgr := NewManager(path, testStaleness)

	lock, err := mgr.Acquire(context.Background(), "run-inspect")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer func() { _ = lock.Release() }()

	state, err := mgr.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !state.Exists {
		t.Error("state.Exists = false for a held lock")
	}
	if state.Stale {
		t.Error("state.Stale = true for a fresh marker")
	}
	if state.Age >= testStaleness {
		t.Errorf("state.Age = %v, want < %v", state.Age, testStaleness)
	}
	if !strings.Contains(state.Record, "run=run-inspect") {
		t.Errorf("state.Record = %q, want the holder's run id", state.Record)
	}
}

// TestManagerInspect_StaleMarker tests inspecting a marker past the
// staleness threshold.
func TestManagerInspect_StaleMarker(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	writeStaleMarker(t, path)

	mgr := NewManager(path, testStaleness)
	state, err := mgr.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !state.Exists {
		t.Error("state.Exists = false for a present marker")
	}
	if !state.Stale {
		t.Error("state.Stale = false for a backdated marker")
	}
	if state.Age <= testStaleness {
		t.Errorf("state.Age = %v, want > %v", state.Age, testStaleness)
	}
	if !strings.Contains(state.Record, "run=crashed") {
		t.Errorf("state.Record = %q, want the crashed run's record", state.Record)
	}
}

// TestManagerInspect_DoesNotModify tests that inspection leaves the marker
// alone even when it is stale.
func TestManagerInspect_DoesNotModify(t *testing.T) {
	t.Parallel()

	path := markerPath(t)
	writeStaleMarker(t, path)

	mgr := NewManager(path, testStaleness)
	if _, err := mgr.Inspect(); err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	if record := readMarker(t, path); !strings.Contains(record, "run=crashed") {
		t.Errorf("marker %q must survive inspection", record)
	}
}
