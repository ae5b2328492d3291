package core

import "context"

// Environment is the surface a run loop needs from a registered environment.
// Implementations wrap a game simulator; this layer never simulates games
// itself.
type Environment interface {
	Reset() (State, error)
	Step(Action, *StepContext) (State, error)

	// Space sizes, read once at configuration time to build policy specs.
	ObservationSize() int
	ActionSize() int
}

// State is a multi-agent environment state. Agent returns the id of the agent
// that must act next. Reward is the reward granted to the acting agent on
// entering this state.
type State interface {
	Hash() string
	Agent() string
	Actions() []Action
	Reward() float64
	Terminal() bool
}

// Action carries an index into the environment's action space alongside a
// hashable identity.
type Action interface {
	Hash() string
	Index() int
}

type EpisodeContext struct {
	Context       context.Context
	Episode       int
	Horizon       int
	Run           int
	StartTimeStep int

	Trace *Trace

	err     error
	timeout bool
	doneCh  chan struct{}
}

func NewEpisodeContext(ctx context.Context) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Trace:   NewTrace(),
		doneCh:  make(chan struct{}),
	}
}

func (e *EpisodeContext) Error(err error) {
	e.err = err
	close(e.doneCh)
}

func (e *EpisodeContext) Timeout() {
	e.timeout = true
	close(e.doneCh)
}

func (e *EpisodeContext) Finish() {
	close(e.doneCh)
}

func (e *EpisodeContext) IsError() bool {
	return e.err != nil
}

func (e *EpisodeContext) Err() error {
	return e.err
}

func (e *EpisodeContext) IsTimeout() bool {
	return e.timeout
}

func (e *EpisodeContext) Done() <-chan struct{} {
	return e.doneCh
}

type StepContext struct {
	Step int
	*EpisodeContext
}

// EnvironmentConstructor builds environment instances for a run loop worker.
type EnvironmentConstructor interface {
	// NewEnvironment creates a new environment with the given instance number.
	NewEnvironment(int) Environment
}
