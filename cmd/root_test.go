package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardrl/scopone-training/core"
)

// cliEnv is a single-agent environment that terminates after three steps,
// just enough to drive the train subcommand end to end.
type cliState struct {
	step     int
	terminal bool
}

func (s *cliState) Hash() string    { return fmt.Sprintf("s%d", s.step) }
func (s *cliState) Agent() string   { return "player_1" }
func (s *cliState) Reward() float64 { return 1 }
func (s *cliState) Terminal() bool  { return s.terminal }

func (s *cliState) Actions() []core.Action {
	return []core.Action{&cliAction{0}, &cliAction{1}}
}

type cliAction struct {
	index int
}

func (a *cliAction) Hash() string { return fmt.Sprintf("a%d", a.index) }
func (a *cliAction) Index() int   { return a.index }

type cliEnv struct {
	step int
}

func (e *cliEnv) Reset() (core.State, error) {
	e.step = 0
	return &cliState{}, nil
}

func (e *cliEnv) Step(core.Action, *core.StepContext) (core.State, error) {
	e.step++
	return &cliState{step: e.step, terminal: e.step >= 3}, nil
}

func (e *cliEnv) ObservationSize() int { return 4 }
func (e *cliEnv) ActionSize() int      { return 2 }

type cliEnvConstructor struct{}

func (c *cliEnvConstructor) NewEnvironment(int) core.Environment { return &cliEnv{} }

func TestTrainCommandRunsEndToEnd(t *testing.T) {
	core.RegisterEnvironment("cmd-test-env", &cliEnvConstructor{})
	dir := t.TempDir()

	root := RootCommand()
	root.SetArgs([]string{
		"train",
		"--env", "cmd-test-env",
		"--agents", "player_1=cli_ppo",
		"--policies", "cli_ppo=ppo",
		"--save-path", dir,
		"--iterations", "1",
		"--episodes-per-iteration", "2",
		"--horizon", "5",
	})
	require.NoError(t, root.Execute())

	// The effective flags are recorded alongside the run artifacts.
	_, err := os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err)
}

func TestTrainCommandRejectsUnknownPolicyClass(t *testing.T) {
	core.RegisterEnvironment("cmd-test-env-bad", &cliEnvConstructor{})

	root := RootCommand()
	root.SetArgs([]string{
		"train",
		"--env", "cmd-test-env-bad",
		"--agents", "player_1=a2c_policy",
		"--policies", "a2c_policy=a2c",
		"--save-path", t.TempDir(),
	})
	err := root.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedPolicy)
}
