package tune

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardrl/scopone-training/core"
)

// walkEnv is a deterministic two-agent environment: agents alternate for a
// fixed number of steps, every transition pays 0.5 to the acting agent.
type walkState struct {
	step     int
	agent    string
	reward   float64
	terminal bool
}

func (s *walkState) Hash() string    { return fmt.Sprintf("s%d", s.step) }
func (s *walkState) Agent() string   { return s.agent }
func (s *walkState) Reward() float64 { return s.reward }
func (s *walkState) Terminal() bool  { return s.terminal }

func (s *walkState) Actions() []core.Action {
	return []core.Action{&walkAction{0}, &walkAction{1}}
}

type walkAction struct {
	index int
}

func (a *walkAction) Hash() string { return fmt.Sprintf("a%d", a.index) }
func (a *walkAction) Index() int   { return a.index }

type walkEnv struct {
	length int
	step   int
}

func (e *walkEnv) Reset() (core.State, error) {
	e.step = 0
	return &walkState{step: 0, agent: "player_1"}, nil
}

func (e *walkEnv) Step(_ core.Action, _ *core.StepContext) (core.State, error) {
	e.step++
	agent := "player_1"
	if e.step%2 == 1 {
		agent = "player_2"
	}
	return &walkState{
		step:     e.step,
		agent:    agent,
		reward:   0.5,
		terminal: e.step >= e.length,
	}, nil
}

func (e *walkEnv) ObservationSize() int { return 8 }
func (e *walkEnv) ActionSize() int      { return 2 }

type walkEnvConstructor struct {
	length int
}

func (c *walkEnvConstructor) NewEnvironment(int) core.Environment {
	return &walkEnv{length: c.length}
}

func testConfig(t *testing.T) *Config {
	return &Config{
		EpisodesPerIteration:         3,
		Horizon:                      10,
		EpisodeTimeout:               5 * time.Second,
		ThresholdConsecutiveErrors:   3,
		ThresholdConsecutiveTimeouts: 3,
		SavePath:                     t.TempDir(),
		Alpha:                        0.3,
		Gamma:                        0.99,
		Temperature:                  1.0,
	}
}

func newWalkTrainer(t *testing.T, envID string, runner *Runner) *core.Trainer {
	trainer, err := core.NewTrainer(envID, &walkEnvConstructor{length: 4}, core.AgentPolicyMap{
		"player_1": "ppo_policy",
		"player_2": "random_policy",
	}, map[string]core.PolicyClass{
		"ppo_policy":    core.PolicyPPO,
		"random_policy": core.PolicyRandom,
	}, core.WithRunLoop(runner), core.WithExperimentName("walk"))
	require.NoError(t, err)
	return trainer
}

func TestRunnerTrainsToCompletion(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	trainer := newWalkTrainer(t, "tune-test-env", runner)

	result, err := trainer.Train(context.Background(), core.StopCriteria{TrainingIterations: 2}, "")
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, 6, result.Episodes)
	assert.Equal(t, 24, result.TotalTimeSteps)

	// Each episode has four 0.5-reward steps split evenly between the two
	// agents.
	assert.InDelta(t, 1.0, result.PolicyRewardMean["ppo_policy"], 1e-9)
	assert.InDelta(t, 1.0, result.PolicyRewardMean["random_policy"], 1e-9)

	require.NotEmpty(t, result.CheckpointDir)
	for _, name := range []string{"ppo_policy.jsonl", "result.json", "stop.json"} {
		_, err := os.Stat(filepath.Join(result.CheckpointDir, name))
		assert.NoError(t, err, name)
	}
	// The baseline has nothing to checkpoint.
	_, err = os.Stat(filepath.Join(result.CheckpointDir, "random_policy.jsonl"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunnerStopsOnRewardMean(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	trainer := newWalkTrainer(t, "tune-test-env-early", runner)

	// The trained policy earns 1.0 per episode, so the bound is met after
	// the first iteration.
	result, err := trainer.Train(context.Background(), core.StopCriteria{
		TrainingIterations: 50,
		EpisodeRewardMean:  0.5,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 3, result.Episodes)
}

func TestRunnerRestoresCheckpoint(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	trainer := newWalkTrainer(t, "tune-test-env-restore", runner)

	first, err := trainer.Train(context.Background(), core.StopCriteria{TrainingIterations: 1}, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.CheckpointDir)

	second := newWalkTrainer(t, "tune-test-env-restore", NewRunner(testConfig(t), nil))
	result, err := second.Train(context.Background(), core.StopCriteria{TrainingIterations: 1}, first.CheckpointDir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Episodes)
}

func TestRunnerRestoreSkipsUntrainedPolicies(t *testing.T) {
	newTrainer := func() *core.Trainer {
		// ppo_spare is in the policy table but assigned to no agent, so it
		// is never trained and never checkpointed.
		trainer, err := core.NewTrainer("tune-test-env-spare", &walkEnvConstructor{length: 4}, core.AgentPolicyMap{
			"player_1": "ppo_policy",
			"player_2": "ppo_policy",
		}, map[string]core.PolicyClass{
			"ppo_policy": core.PolicyPPO,
			"ppo_spare":  core.PolicyPPO,
		}, core.WithRunLoop(NewRunner(testConfig(t), nil)), core.WithExperimentName("spare"))
		require.NoError(t, err)
		return trainer
	}

	first, err := newTrainer().Train(context.Background(), core.StopCriteria{TrainingIterations: 1}, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.CheckpointDir)
	_, err = os.Stat(filepath.Join(first.CheckpointDir, "ppo_spare.jsonl"))
	require.True(t, os.IsNotExist(err))

	result, err := newTrainer().Train(context.Background(), core.StopCriteria{TrainingIterations: 1}, first.CheckpointDir)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Episodes)
}

func TestRunnerFailsOnMissingRestore(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	trainer := newWalkTrainer(t, "tune-test-env-badrestore", runner)

	_, err := trainer.Train(context.Background(), core.StopCriteria{TrainingIterations: 1}, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ppo_policy")
}

func TestRunnerRequiresRegisteredEnvironment(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	_, err := runner.Run(context.Background(), &core.RunRequest{
		Name:    "missing",
		Trainer: core.TrainerPPO,
		Config: &core.TrainerConfig{
			EnvID:        "tune-env-that-does-not-exist",
			Policies:     core.PolicyTable{},
			AssignPolicy: func(string) string { return "" },
		},
		Stop: core.StopCriteria{TrainingIterations: 1},
	})
	assert.ErrorIs(t, err, core.ErrUnknownEnvironment)
}

// failEnv errors on every reset to exercise the consecutive-error threshold.
type failEnv struct{}

func (e *failEnv) Reset() (core.State, error) { return nil, fmt.Errorf("boom") }
func (e *failEnv) Step(core.Action, *core.StepContext) (core.State, error) {
	return nil, fmt.Errorf("boom")
}
func (e *failEnv) ObservationSize() int { return 1 }
func (e *failEnv) ActionSize() int      { return 1 }

type failEnvConstructor struct{}

func (c *failEnvConstructor) NewEnvironment(int) core.Environment { return &failEnv{} }

func TestRunnerAbortsAfterConsecutiveErrors(t *testing.T) {
	runner := NewRunner(testConfig(t), nil)
	trainer, err := core.NewTrainer("tune-test-env-fail", &failEnvConstructor{}, core.AgentPolicyMap{
		"player_1": "ppo_policy",
	}, map[string]core.PolicyClass{
		"ppo_policy": core.PolicyPPO,
	}, core.WithRunLoop(runner))
	require.NoError(t, err)

	_, err = trainer.Train(context.Background(), core.StopCriteria{TrainingIterations: 5}, "")
	assert.ErrorIs(t, err, ErrTooManyErrors)
}
