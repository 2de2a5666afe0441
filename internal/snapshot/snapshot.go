// Package snapshot persists the normalized draft each run produces, one
// timestamped JSON file per run, so rejected or never-inserted posts can be
// inspected after the fact. Writes are atomic and the directory is pruned
// to a retention count.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/clock"
	"github.com/votewire/autopost/internal/constants"
	"github.com/votewire/autopost/internal/ctxutil"
	"github.com/votewire/autopost/internal/domain"
	"github.com/votewire/autopost/internal/errors"
)

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validSnapshotRegex matches snapshot file names
// (draft_YYYYMMDD_HHMMSS.json, with an optional millisecond suffix).
var validSnapshotRegex = regexp.MustCompile(`^draft_\d{8}_\d{6}(_\d{3})?\.json$`)

// Store writes, reads and prunes draft snapshots in a single directory.
type Store struct {
	dir    string
	keep   int
	clock  clock.Clock
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for snapshot operations.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock replaces the time source used for snapshot names.
func WithClock(clk clock.Clock) Option {
	return func(s *Store) {
		s.clock = clk
	}
}

// New creates a snapshot store rooted at dir, retaining the newest keep
// files when pruning.
func New(dir string, keep int, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		keep:   keep,
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save writes the draft as a timestamped JSON snapshot and returns its path.
// The write goes through a temp file and rename so a crash never leaves a
// partial snapshot behind.
func (s *Store) Save(ctx context.Context, draft *domain.Draft) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode draft snapshot")
	}

	now := s.clock.Now().UTC()
	name := fmt.Sprintf("%s%s.json", constants.SnapshotFilePrefix, now.Format("20060102_150405"))
	path := filepath.Join(s.dir, name)

	// Same-second runs get a millisecond suffix instead of overwriting.
	if _, err := os.Stat(path); err == nil {
		name = fmt.Sprintf("%s%s_%03d.json",
			constants.SnapshotFilePrefix,
			now.Format("20060102_150405"),
			now.Nanosecond()/1000000)
		path = filepath.Join(s.dir, name)
	}

	if err := atomicWrite(path, data); err != nil {
		return "", errors.Wrap(err, "write draft snapshot")
	}

	s.logger.Debug().
		Str("path", path).
		Int("bytes", len(data)).
		Msg("draft snapshot written")

	return path, nil
}

// Latest returns the path of the newest snapshot.
// Returns ErrSnapshotNotFound when the directory holds none.
func (s *Store) Latest(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	names, err := s.list()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no snapshots in %s: %w", s.dir, errors.ErrSnapshotNotFound)
	}

	return filepath.Join(s.dir, names[len(names)-1]), nil
}

// Prune removes the oldest snapshots beyond the retention count and returns
// how many were removed.
func (s *Store) Prune(ctx context.Context) (int, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return 0, err
	}

	names, err := s.list()
	if err != nil {
		return 0, err
	}
	if s.keep < 1 || len(names) <= s.keep {
		return 0, nil
	}

	removed := 0
	for _, name := range names[:len(names)-s.keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return removed, fmt.Errorf("failed to prune snapshot '%s': %w", name, err)
		}
		removed++
	}

	s.logger.Debug().
		Int("removed", removed).
		Int("kept", s.keep).
		Msg("snapshots pruned")

	return removed, nil
}

// list returns snapshot file names sorted oldest first. The zero-padded
// timestamp naming makes lexicographic order chronological.
func (s *Store) list() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !validSnapshotRegex.MatchString(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)
	return names, nil
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Ensure data is persisted before rename.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
