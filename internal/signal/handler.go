// Package signal provides graceful shutdown handling for autopost CLI commands.
//
// Import rules:
//   - CAN import: std lib only
//   - MUST NOT import: internal packages (to avoid circular dependencies)
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler turns SIGINT and SIGTERM into context cancellation so an
// interrupted run can release its lock and flush artifacts before exiting.
// Cron supervisors deliver SIGTERM on timeout and operators press Ctrl+C
// at a terminal; Cause reports which one ended the run.
type Handler struct {
	ctx         context.Context //nolint:containedctx // intentional: handler manages context lifecycle
	cancel      context.CancelFunc
	interrupted chan struct{}
	stopped     chan struct{} // tells listen() to exit cleanly
	once        sync.Once
	stopOnce    sync.Once
	notify      chan os.Signal
	cause       os.Signal // written once, before interrupted closes
}

// NewHandler wraps parent in a cancellable context and starts listening
// for SIGINT and SIGTERM. The first signal cancels the context and closes
// the Interrupted channel; always pair with a deferred Stop.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		interrupted: make(chan struct{}),
		stopped:     make(chan struct{}),
		// Buffer of 1 so signal.Notify never drops a signal that lands
		// between receives. See: https://pkg.go.dev/os/signal#Notify
		notify: make(chan os.Signal, 1),
	}

	signal.Notify(h.notify, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context that the first signal cancels. Run all
// interruptible work under it.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted returns a channel that closes when a signal arrives. Stop
// does not close it, so callers can tell an interrupt from a normal exit.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// Cause returns the signal that interrupted the run, or nil when none has
// arrived. Safe to call from any goroutine.
func (h *Handler) Cause() os.Signal {
	select {
	case <-h.interrupted:
		return h.cause
	default:
		return nil
	}
}

// Stop detaches the handler from OS signal delivery and cancels the
// context. Idempotent; call it when the command finishes.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.notify)
		close(h.stopped) // let listen() exit before signal delivery ends
		h.cancel()
	})
}

// handleSignal records the first signal and cancels the context. Later
// signals are no-ops.
func (h *Handler) handleSignal(sig os.Signal) {
	h.once.Do(func() {
		h.cause = sig
		h.cancel()
		close(h.interrupted)
	})
}

// listen receives signals until Stop is called or the context ends. It
// keeps looping after the first signal so repeated Ctrl+C presses drain
// harmlessly instead of backing up in the channel.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.stopped:
			return
		case sig := <-h.notify:
			h.handleSignal(sig)
		}
	}
}
