package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/votewire/autopost/internal/domain"
	apperrors "github.com/votewire/autopost/internal/errors"
)

// RunnerRegistry holds the Runner for each agent CLI. Registration and
// lookup are safe for concurrent use.
type RunnerRegistry struct {
	mu      sync.RWMutex
	runners map[domain.Agent]Runner
}

// NewRunnerRegistry returns an empty registry.
func NewRunnerRegistry() *RunnerRegistry {
	return &RunnerRegistry{
		runners: make(map[domain.Agent]Runner),
	}
}

// Register adds or replaces the runner for an agent.
func (r *RunnerRegistry) Register(agent domain.Agent, runner Runner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[agent] = runner
}

// Get returns the runner registered for the agent, or ErrAgentNotFound
// when none is.
func (r *RunnerRegistry) Get(agent domain.Agent) (Runner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runner, ok := r.runners[agent]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAgentNotFound, agent)
	}
	return runner, nil
}

// Has reports whether a runner is registered for the agent.
func (r *RunnerRegistry) Has(agent domain.Agent) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.runners[agent]
	return ok
}

// Agents lists every agent with a registered runner, in no particular
// order.
func (r *RunnerRegistry) Agents() []domain.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]domain.Agent, 0, len(r.runners))
	for a := range r.runners {
		agents = append(agents, a)
	}
	return agents
}

// MultiRunner dispatches generation requests to the appropriate runner
// based on the agent field. It implements the Runner interface to provide
// transparent agent routing.
type MultiRunner struct {
	registry *RunnerRegistry
}

// NewMultiRunner wraps a registry in a dispatching Runner.
func NewMultiRunner(registry *RunnerRegistry) *MultiRunner {
	return &MultiRunner{registry: registry}
}

// Generate dispatches to the appropriate runner based on req.Agent.
// Returns ErrEmptyValue if req.Agent is not specified.
func (m *MultiRunner) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.GenerateResult, error) {
	if req.Agent == "" {
		return nil, fmt.Errorf("%w: agent must be specified in request", apperrors.ErrEmptyValue)
	}

	runner, err := m.registry.Get(req.Agent)
	if err != nil {
		return nil, err
	}

	return runner.Generate(ctx, req)
}

// Compile-time check that MultiRunner implements Runner.
var _ Runner = (*MultiRunner)(nil)
