package runlock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/clock"
	"github.com/votewire/autopost/internal/ctxutil"
	apperrors "github.com/votewire/autopost/internal/errors"
	"github.com/votewire/autopost/internal/flock"
)

const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions

	// markerTimeLayout formats the start time recorded in the marker.
	markerTimeLayout = "2006-01-02 15:04:05"
)

// Manager acquires and releases the run lock at a fixed marker path.
type Manager struct {
	path      string
	staleness time.Duration
	clock     clock.Clock
	logger    zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for staleness decisions.
func WithClock(clk clock.Clock) Option {
	return func(m *Manager) {
		m.clock = clk
	}
}

// WithLogger attaches a logger for eviction and contention events.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager for the marker at path. A marker older than
// staleness whose holder no longer holds the OS lock is evicted on Acquire.
func NewManager(path string, staleness time.Duration, opts ...Option) *Manager {
	m := &Manager{
		path:      path,
		staleness: staleness,
		clock:     clock.RealClock{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lock is a held run lock. Release must be called on every exit path.
type Lock struct {
	path string
	file *os.File
}

// Path returns the marker file location.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the run lock for runID. When the marker already exists it is
// evicted only if it is both older than the staleness threshold and no live
// process holds the OS lock on it; creation is then retried once. Any other
// contention returns ErrLockHeld so the caller can abort cleanly before
// touching the corpus.
func (m *Manager) Acquire(ctx context.Context, runID string) (*Lock, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), dirPerm); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := m.create(runID)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create lock marker: %w", err)
	}

	if err := m.evictStale(); err != nil {
		return nil, err
	}

	lock, err = m.create(runID)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, apperrors.Wrap(apperrors.ErrLockHeld, "lock marker recreated during eviction")
		}
		return nil, fmt.Errorf("create lock marker after eviction: %w", err)
	}
	return lock, nil
}

// create performs the exclusive create and writes the holder record. The
// returned error preserves os.ErrExist for the caller's contention check.
func (m *Manager) create(runID string) (*Lock, error) {
	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm) //#nosec G304 -- marker path comes from local configuration
	if err != nil {
		return nil, err
	}
	if err := flock.Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		_ = os.Remove(m.path)
		return nil, fmt.Errorf("lock freshly created marker: %w", err)
	}
	record := fmt.Sprintf("pid=%d run=%s started=%s\n", os.Getpid(), runID, m.clock.Now().Format(markerTimeLayout))
	if _, err := f.WriteString(record); err != nil {
		_ = flock.Unlock(f.Fd())
		_ = f.Close()
		_ = os.Remove(m.path)
		return nil, fmt.Errorf("write lock marker record: %w", err)
	}
	return &Lock{path: m.path, file: f}, nil
}

// evictStale removes the existing marker when it is older than the staleness
// threshold and its holder no longer holds the OS lock. Every other state is
// reported as ErrLockHeld.
func (m *Manager) evictStale() error {
	info, err := os.Stat(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Released between the failed create and the stat.
			return nil
		}
		return fmt.Errorf("stat lock marker %s: %w", m.path, err)
	}

	age := m.clock.Since(info.ModTime())
	if age <= m.staleness {
		return apperrors.Wrapf(apperrors.ErrLockHeld, "marker %s exists (age %s, threshold %s); another run may still be active", m.path, age.Round(time.Second), m.staleness)
	}

	held, err := m.probeHolder()
	if err != nil {
		return err
	}
	if held {
		return apperrors.Wrapf(apperrors.ErrLockHeld, "marker %s exceeds the staleness threshold but its holder is still running", m.path)
	}

	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale lock marker: %w", err)
	}
	m.logger.Warn().
		Str("path", m.path).
		Dur("age", age).
		Msg("evicted stale run lock")
	return nil
}

// State describes the lock marker for diagnostics.
type State struct {
	// Exists reports whether a marker file is present.
	Exists bool `json:"exists"`

	// Age is how long ago the marker was written.
	Age time.Duration `json:"age,omitempty"`

	// Stale reports whether the marker has outlived the staleness threshold.
	Stale bool `json:"stale,omitempty"`

	// Record is the holder record from the marker (pid, run, start time).
	Record string `json:"record,omitempty"`
}

// Inspect reports the marker state without acquiring or evicting anything.
func (m *Manager) Inspect() (State, error) {
	info, err := os.Stat(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("stat lock marker %s: %w", m.path, err)
	}

	state := State{
		Exists: true,
		Age:    m.clock.Since(info.ModTime()),
	}
	state.Stale = state.Age > m.staleness

	record, err := os.ReadFile(m.path) //#nosec G304 -- marker path comes from local configuration
	if err == nil {
		state.Record = string(record)
	}
	return state, nil
}

// probeHolder reports whether a live process still holds the OS lock on the
// marker. The probe lock is dropped immediately on success.
func (m *Manager) probeHolder() (bool, error) {
	f, err := os.OpenFile(m.path, os.O_RDWR, filePerm) //#nosec G304 -- marker path comes from local configuration
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("open lock marker for probe: %w", err)
	}
	defer func() { _ = f.Close() }()

	return flock.HeldElsewhere(f.Fd()), nil
}

// Release unlocks, closes, and removes the marker. The close happens before
// the remove because Windows refuses to delete an open file. Safe to call on
// a nil lock and idempotent for a released one.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := flock.Unlock(l.file.Fd())
	closeErr := l.file.Close()
	removeErr := os.Remove(l.path)
	l.file = nil

	if unlockErr != nil {
		return fmt.Errorf("unlock run lock: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close run lock: %w", closeErr)
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return fmt.Errorf("remove run lock marker: %w", removeErr)
	}
	return nil
}
