package policies

import (
	"math"
	"time"

	"github.com/cardrl/scopone-training/core"
	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMaxPolicy is a tabular Q-learning policy that samples actions from a
// Boltzmann distribution over the state's action values. The local run loop
// uses it as the executable stand-in for trainable policy classes.
type SoftMaxPolicy struct {
	Table       *QTable
	Alpha       float64
	Gamma       float64
	Temperature float64

	rand erand.Source
}

var _ core.Policy = &SoftMaxPolicy{}

func NewSoftMaxPolicy(alpha, gamma, temperature float64) *SoftMaxPolicy {
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftMaxPolicy{
		Table:       NewQTable(),
		Alpha:       alpha,
		Gamma:       gamma,
		Temperature: temperature,
		rand:        erand.NewSource(uint64(time.Now().UnixMilli())),
	}
}

func (s *SoftMaxPolicy) Reset() {
	s.Table = NewQTable()
	s.rand = erand.NewSource(uint64(time.Now().UnixMilli()))
}

func (s *SoftMaxPolicy) ResetEpisode(_ *core.EpisodeContext) {}

func (s *SoftMaxPolicy) UpdateEpisode(_ *core.EpisodeContext) {}

func (s *SoftMaxPolicy) PickAction(step *core.StepContext, state core.State, actions []core.Action) core.Action {
	if len(actions) == 0 {
		return nil
	}
	stateHash := state.Hash()

	vals := make([]float64, len(actions))
	largest := s.Table.Get(stateHash, actions[0].Hash(), 0)
	for i, a := range actions {
		vals[i] = s.Table.Get(stateHash, a.Hash(), 0)
		if vals[i] > largest {
			largest = vals[i]
		}
	}

	// Shift by the max before exponentiating to keep the weights finite.
	sum := float64(0)
	for i := range vals {
		vals[i] = math.Exp((vals[i] - largest) / s.Temperature)
		sum += vals[i]
	}
	weights := make([]float64, len(vals))
	for i, v := range vals {
		weights[i] = v / sum
	}

	i, ok := sampleuv.NewWeighted(weights, s.rand).Take()
	if !ok {
		return actions[0]
	}
	return actions[i]
}

func (s *SoftMaxPolicy) UpdateStep(sCtx *core.StepContext, state core.State, action core.Action, nextState core.State) {
	stateHash := state.Hash()
	actionKey := action.Hash()

	curVal := s.Table.Get(stateHash, actionKey, 0)
	_, max := s.Table.Max(nextState.Hash(), 0)

	reward := nextState.Reward()
	nextVal := (1-s.Alpha)*curVal + s.Alpha*(reward+s.Gamma*max)
	s.Table.Set(stateHash, actionKey, nextVal)
}

type SoftMaxPolicyConstructor struct {
	Alpha       float64
	Gamma       float64
	Temperature float64
}

var _ core.PolicyConstructor = &SoftMaxPolicyConstructor{}

func NewSoftMaxPolicyConstructor(alpha, gamma, temperature float64) *SoftMaxPolicyConstructor {
	return &SoftMaxPolicyConstructor{
		Alpha:       alpha,
		Gamma:       gamma,
		Temperature: temperature,
	}
}

func (s *SoftMaxPolicyConstructor) NewPolicy() core.Policy {
	return NewSoftMaxPolicy(s.Alpha, s.Gamma, s.Temperature)
}
