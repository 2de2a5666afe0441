package signal

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitInterrupted blocks until the handler reports the interrupt, failing
// the test if the listen goroutine never reacts.
func waitInterrupted(t *testing.T, h *Handler) {
	t.Helper()
	select {
	case <-h.Interrupted():
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not react to the signal")
	}
}

// TestHandler_InitialState verifies a fresh handler reports nothing:
// open context, open Interrupted channel, nil Cause.
func TestHandler_InitialState(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())
	assert.Nil(t, h.Cause())

	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should be open before any signal")
	default:
	}
}

// TestHandler_SignalCancelsContext verifies that a signal delivered
// through the notify channel cancels the context and records its cause.
func TestHandler_SignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.notify <- syscall.SIGTERM
	waitInterrupted(t, h)

	require.Error(t, h.Context().Err())
	assert.Equal(t, context.Canceled, h.Context().Err())
	assert.Equal(t, syscall.SIGTERM, h.Cause())
}

// TestHandler_FirstSignalWins verifies that only the first signal is
// recorded; later ones neither change the cause nor panic.
func TestHandler_FirstSignalWins(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal(syscall.SIGTERM)
	h.handleSignal(syscall.SIGINT)
	h.handleSignal(syscall.SIGINT)

	require.Error(t, h.Context().Err())
	assert.Equal(t, syscall.SIGTERM, h.Cause())
}

// TestHandler_RepeatedSignalsDoNotBlock verifies that signals arriving
// after the first are drained rather than backing up in the channel.
func TestHandler_RepeatedSignalsDoNotBlock(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	// The second send completing proves the first was consumed; with a
	// buffer of one a stuck listener would deadlock here.
	h.notify <- syscall.SIGINT
	h.notify <- syscall.SIGINT
	waitInterrupted(t, h)

	require.Error(t, h.Context().Err())
	assert.Equal(t, syscall.SIGINT, h.Cause())
}

// TestHandler_StopIsNotAnInterrupt verifies that Stop cancels the context
// without pretending a signal arrived.
func TestHandler_StopIsNotAnInterrupt(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()

	assert.Error(t, h.Context().Err())
	assert.Nil(t, h.Cause())

	select {
	case <-h.Interrupted():
		t.Fatal("Stop must not close the interrupted channel")
	default:
	}
}

// TestHandler_StopIsIdempotent verifies that Stop can be called multiple
// times safely.
func TestHandler_StopIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	h.Stop()
	h.Stop()

	assert.Error(t, h.Context().Err())
}

// TestHandler_ParentCancelPropagates verifies that canceling the parent
// context cancels the handler's context without marking an interrupt.
func TestHandler_ParentCancelPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	assert.Error(t, h.Context().Err())
	assert.Nil(t, h.Cause())
}
