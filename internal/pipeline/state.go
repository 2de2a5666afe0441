// Package pipeline drives one end-to-end posting run.
package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/votewire/autopost/internal/constants"
	apperrors "github.com/votewire/autopost/internal/errors"
)

// ValidTransitions defines the allowed run state transitions. A run walks
// the machine front to back; the only branch points are lock contention
// (Aborted) and the terminal decision after validation.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.RunState][]constants.RunState{
	constants.RunStateIdle:         {constants.RunStateLockAcquired, constants.RunStateAborted},
	constants.RunStateLockAcquired: {constants.RunStateCorpusLoaded, constants.RunStateAborted},
	constants.RunStateCorpusLoaded: {constants.RunStateGenerated},
	constants.RunStateGenerated:    {constants.RunStateNormalized},
	constants.RunStateNormalized:   {constants.RunStateValidated},
	constants.RunStateValidated:    {constants.RunStateRejected, constants.RunStateSkipped, constants.RunStateAccepted},
	constants.RunStateRejected:     {constants.RunStateReleased},
	constants.RunStateSkipped:      {constants.RunStateReleased},
	constants.RunStateAccepted:     {constants.RunStateReleased},
}

// terminalStates holds the states with no outgoing transitions for O(1)
// lookup.
//
// MAINTENANCE: keep in sync with ValidTransitions above.
//
//nolint:gochecknoglobals // Read-only lookup table
var terminalStates = map[constants.RunState]bool{
	constants.RunStateReleased: true,
	constants.RunStateAborted:  true,
}

// IsValidTransition reports whether a run may move from one state to
// another. Same-state transitions are not valid.
func IsValidTransition(from, to constants.RunState) bool {
	allowed, ok := ValidTransitions[from]
	if !ok {
		return false
	}

	for _, state := range allowed {
		if state == to {
			return true
		}
	}
	return false
}

// IsTerminalState reports whether a run in this state is finished.
func IsTerminalState(state constants.RunState) bool {
	return terminalStates[state]
}

// runState tracks one run's position in the state machine and logs every
// move under the run id.
type runState struct {
	current constants.RunState
	logger  zerolog.Logger
}

// newRunState starts a tracker in the Idle state.
func newRunState(logger zerolog.Logger) *runState {
	return &runState{
		current: constants.RunStateIdle,
		logger:  logger,
	}
}

// to advances the run to the next state, rejecting moves the machine does
// not allow.
func (r *runState) to(next constants.RunState) error {
	if !IsValidTransition(r.current, next) {
		return fmt.Errorf("%w: cannot transition from %s to %s", apperrors.ErrInvalidTransition, r.current, next)
	}

	r.logger.Debug().
		Str("from", r.current.String()).
		Str("to", next.String()).
		Msg("run state changed")

	r.current = next
	return nil
}
