// Package logging hardens the run log file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/votewire/autopost/internal/clock"
)

// FailoverWriter writes to a primary sink until a write fails, then opens a
// dated fallback file and keeps logging there for the rest of the run.
// Logging never returns an error to the caller; a run log that cannot be
// written anywhere is dropped, not fatal.
type FailoverWriter struct {
	mu       sync.Mutex
	primary  io.Writer
	dir      string
	clock    clock.Clock
	fallback *os.File
	failed   bool
}

// FailoverOption configures a FailoverWriter.
type FailoverOption func(*FailoverWriter)

// WithFailoverClock sets the clock used to date fallback file names.
func WithFailoverClock(clk clock.Clock) FailoverOption {
	return func(w *FailoverWriter) {
		w.clock = clk
	}
}

// NewFailoverWriter creates a FailoverWriter over the primary sink.
// Fallback files are created in dir as autopost-YYYYMMDD.log; an empty dir
// means the system temp directory.
func NewFailoverWriter(primary io.Writer, dir string, opts ...FailoverOption) *FailoverWriter {
	if dir == "" {
		dir = os.TempDir()
	}

	w := &FailoverWriter{
		primary: primary,
		dir:     dir,
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements io.Writer. The first failed primary write flips the
// writer to the fallback file permanently; entries that cannot reach either
// sink are dropped.
func (w *FailoverWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.failed {
		n, err := w.primary.Write(p)
		if err == nil {
			return n, nil
		}
		w.failed = true
	}

	if w.fallback == nil {
		name := fmt.Sprintf("autopost-%s.log", w.clock.Now().UTC().Format("20060102"))
		file, err := os.OpenFile(filepath.Join(w.dir, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return len(p), nil
		}
		w.fallback = file
	}

	_, _ = w.fallback.Write(p)
	return len(p), nil
}

// FallbackPath returns the path of the active fallback file, or "" while
// the primary sink is still healthy.
func (w *FailoverWriter) FallbackPath() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fallback == nil {
		return ""
	}
	return w.fallback.Name()
}

// Close closes the fallback file if one was opened. The primary sink is
// owned by the caller.
func (w *FailoverWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fallback == nil {
		return nil
	}
	err := w.fallback.Close()
	w.fallback = nil
	return err
}
