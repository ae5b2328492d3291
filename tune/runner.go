// Package tune is the in-process training backend: it implements core.RunLoop
// by driving the registered environment with the configured policies. It
// exists so the configuration layer can be exercised end to end without a
// distributed training framework; real backends plug in behind the same
// interface.
package tune

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gosuri/uilive"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/cardrl/scopone-training/core"
	"github.com/cardrl/scopone-training/policies"
	"github.com/cardrl/scopone-training/util"
)

var (
	ErrTooManyTimeouts = errors.New("too many timeouts")
	ErrTooManyErrors   = errors.New("too many errors")
)

type Config struct {
	EpisodesPerIteration int
	Horizon              int
	EpisodeTimeout       time.Duration

	ThresholdConsecutiveErrors   int
	ThresholdConsecutiveTimeouts int

	// SavePath is the root directory for run artifacts and end-of-run
	// checkpoints.
	SavePath string

	// Tabular stand-in parameters used to execute trainable policy classes
	// locally.
	Alpha       float64
	Gamma       float64
	Temperature float64
}

func DefaultConfig() *Config {
	return &Config{
		EpisodesPerIteration:         100,
		Horizon:                      50,
		EpisodeTimeout:               10 * time.Second,
		ThresholdConsecutiveErrors:   20,
		ThresholdConsecutiveTimeouts: 20,
		SavePath:                     "results",
		Alpha:                        0.3,
		Gamma:                        0.99,
		Temperature:                  1.0,
	}
}

// Runner runs one trainer configuration to completion.
type Runner struct {
	config *Config
	logger *logrus.Logger
}

var _ core.RunLoop = &Runner{}

func NewRunner(config *Config, logger *logrus.Logger) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{config: config, logger: logger}
}

// Run executes the trainer configuration: episodes are grouped into training
// iterations, trained policies update after every step, and the run stops on
// the request's criteria. Returns the aggregated result; persistent failures
// of the environment abort the run.
func (r *Runner) Run(ctx context.Context, req *core.RunRequest) (*core.RunResult, error) {
	envC, ok := core.LookupEnvironment(req.Config.EnvID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownEnvironment, req.Config.EnvID)
	}
	env := envC.NewEnvironment(0)

	pols, err := r.buildPolicies(req)
	if err != nil {
		return nil, err
	}

	result := &core.RunResult{
		RunID:            uuid.NewString(),
		PolicyRewardMean: make(map[string]float64),
	}
	rewards := make(map[string][]float64)
	trainedRewards := make([]float64, 0)

	writer := uilive.New()
	writer.Start()
	defer writer.Stop()

	consecutiveErrors := 0
	consecutiveTimeouts := 0

IterationLoop:
	for iteration := 0; iteration < req.Stop.TrainingIterations; iteration++ {
		for e := 0; e < r.config.EpisodesPerIteration; e++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			eCtx, errored, timedout := r.runEpisode(ctx, env, pols, req, iteration*r.config.EpisodesPerIteration+e)

			if errored {
				if consecutiveErrors++; consecutiveErrors >= r.config.ThresholdConsecutiveErrors {
					return nil, fmt.Errorf("%w: %v", ErrTooManyErrors, eCtx.Err())
				}
				continue
			}
			consecutiveErrors = 0
			if timedout {
				if consecutiveTimeouts++; consecutiveTimeouts >= r.config.ThresholdConsecutiveTimeouts {
					return nil, ErrTooManyTimeouts
				}
				continue
			}
			consecutiveTimeouts = 0

			result.Episodes++
			result.TotalTimeSteps += eCtx.Trace.Len()

			trained := float64(0)
			for name := range req.Config.Policies {
				reward := eCtx.Trace.RewardFor(name, req.Config.AssignPolicy)
				rewards[name] = append(rewards[name], reward)
			}
			for _, name := range req.Config.PoliciesToTrain {
				trained += eCtx.Trace.RewardFor(name, req.Config.AssignPolicy)
			}
			trainedRewards = append(trainedRewards, trained)
		}
		result.Iterations = iteration + 1

		mean := float64(0)
		if len(trainedRewards) > 0 {
			mean = stat.Mean(trainedRewards, nil)
		}
		fmt.Fprintf(
			writer,
			"Experiment: %s, Iteration %d/%d, Episodes: %d, Timesteps: %d, RewardMean: %.3f\n",
			req.Name, result.Iterations, req.Stop.TrainingIterations, result.Episodes, result.TotalTimeSteps, mean,
		)
		writer.Flush()

		if req.Stop.EpisodeRewardMean != 0 && mean >= req.Stop.EpisodeRewardMean {
			break IterationLoop
		}
	}

	for name, rs := range rewards {
		if len(rs) > 0 {
			result.PolicyRewardMean[name] = stat.Mean(rs, nil)
		}
	}

	if req.CheckpointAtEnd {
		if err := r.checkpoint(req, pols, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// runEpisode plays one episode in its own goroutine, bounded by the horizon
// and the episode timeout.
func (r *Runner) runEpisode(ctx context.Context, env core.Environment, pols map[string]core.Policy, req *core.RunRequest, episode int) (eCtx *core.EpisodeContext, errored, timedout bool) {
	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, r.config.EpisodeTimeout)
	defer timeoutCancel()

	eCtx = core.NewEpisodeContext(timeoutCtx)
	eCtx.Episode = episode
	eCtx.Horizon = r.config.Horizon

	for _, p := range pols {
		p.ResetEpisode(eCtx)
	}

	go func(eCtx *core.EpisodeContext) {
		state, err := env.Reset()
		if err != nil {
			eCtx.Error(err)
			return
		}
		for step := 0; step < r.config.Horizon && !state.Terminal(); step++ {
			select {
			case <-eCtx.Context.Done():
				eCtx.Error(eCtx.Context.Err())
				return
			default:
			}

			sCtx := &core.StepContext{Step: step, EpisodeContext: eCtx}
			agent := state.Agent()
			pol := pols[req.Config.AssignPolicy(agent)]
			if pol == nil {
				eCtx.Error(fmt.Errorf("agent %q has no policy", agent))
				return
			}
			action := pol.PickAction(sCtx, state, state.Actions())
			if action == nil {
				eCtx.Error(fmt.Errorf("policy for agent %q returned no action", agent))
				return
			}
			nextState, err := env.Step(action, sCtx)
			if err != nil {
				eCtx.Error(err)
				return
			}
			pol.UpdateStep(sCtx, state, action, nextState)
			eCtx.Trace.AddStep(&core.Step{
				Agent:     agent,
				State:     state,
				Action:    action,
				NextState: nextState,
				Reward:    nextState.Reward(),
			})
			state = nextState
		}
		for _, p := range pols {
			p.UpdateEpisode(eCtx)
		}
		eCtx.Finish()
	}(eCtx)

	select {
	case <-eCtx.Done():
		if eCtx.IsError() {
			return eCtx, true, false
		}
	case <-timeoutCtx.Done():
		return eCtx, false, true
	}
	return eCtx, false, false
}

// buildPolicies instantiates one executable policy per table entry. Trainable
// classes run as tabular softmax learners here; a real backend substitutes
// its own implementations.
func (r *Runner) buildPolicies(req *core.RunRequest) (map[string]core.Policy, error) {
	trained := make(map[string]bool, len(req.Config.PoliciesToTrain))
	for _, name := range req.Config.PoliciesToTrain {
		trained[name] = true
	}

	pols := make(map[string]core.Policy, len(req.Config.Policies))
	for name, spec := range req.Config.Policies {
		switch spec.Class {
		case core.PolicyRandom:
			pols[name] = policies.NewRandomPolicy()
		case core.PolicyPPO, core.PolicyDQN:
			p := policies.NewSoftMaxPolicy(r.config.Alpha, r.config.Gamma, r.config.Temperature)
			// Checkpoints only hold tables for the trained set, so a
			// trainable policy no agent used starts fresh on restore.
			if req.Restore != "" && trained[name] {
				if err := p.Table.Read(filepath.Join(req.Restore, name+".jsonl")); err != nil {
					return nil, fmt.Errorf("restoring policy %q: %w", name, err)
				}
			}
			pols[name] = p
		default:
			return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedPolicy, name)
		}
	}
	return pols, nil
}

// checkpoint records the trained policy tables and the run summary under
// SavePath/<experiment>/<run id>.
func (r *Runner) checkpoint(req *core.RunRequest, pols map[string]core.Policy, result *core.RunResult) error {
	dir := filepath.Join(r.config.SavePath, req.Name, result.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, name := range req.Config.PoliciesToTrain {
		p, ok := pols[name].(*policies.SoftMaxPolicy)
		if !ok {
			continue
		}
		if err := p.Table.Record(filepath.Join(dir, name+".jsonl")); err != nil {
			return fmt.Errorf("recording policy %q: %w", name, err)
		}
	}
	if err := util.SaveJson(filepath.Join(dir, "result.json"), result); err != nil {
		return err
	}
	if err := util.SaveJson(filepath.Join(dir, "stop.json"), req.Stop); err != nil {
		return err
	}
	result.CheckpointDir = dir

	r.logger.WithFields(logrus.Fields{
		"experiment": req.Name,
		"run":        result.RunID,
		"dir":        dir,
	}).Info("checkpoint recorded")
	return nil
}
