package core

import "sync"

type Step struct {
	Agent     string
	State     State
	Action    Action
	NextState State
	Reward    float64
}

// Trace records the steps of one episode. Safe for concurrent use since the
// episode body runs in its own goroutine.
type Trace struct {
	mtx   *sync.Mutex
	steps []*Step
}

func NewTrace() *Trace {
	return &Trace{
		steps: make([]*Step, 0),
		mtx:   &sync.Mutex{},
	}
}

func (t *Trace) AddStep(s *Step) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.steps = append(t.steps, s)
}

func (t *Trace) Step(i int) *Step {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.steps[i]
}

func (t *Trace) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return len(t.steps)
}

func (t *Trace) Last() *Step {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if len(t.steps) == 0 {
		return nil
	}
	return t.steps[len(t.steps)-1]
}

// RewardFor sums the rewards of the steps taken by agents mapped to the given
// policy via assign.
func (t *Trace) RewardFor(policy string, assign func(string) string) float64 {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	total := float64(0)
	for _, s := range t.steps {
		if assign(s.Agent) == policy {
			total += s.Reward
		}
	}
	return total
}
