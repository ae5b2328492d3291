package core

import "context"

// StopCriteria bounds a training run. TrainingIterations is the hard limit;
// EpisodeRewardMean, when non-zero, stops the run early once the mean episode
// reward of the trained policies reaches it.
type StopCriteria struct {
	TrainingIterations int     `json:"training_iterations"`
	EpisodeRewardMean  float64 `json:"episode_reward_mean,omitempty"`
}

// RunRequest is everything a run loop needs to execute one trainer.
type RunRequest struct {
	// Name of the experiment, used by backends to name result directories.
	Name    string
	Trainer TrainerClass
	Config  *TrainerConfig
	Stop    StopCriteria

	// Restore is an optional checkpoint path to resume from.
	Restore string
	// CheckpointAtEnd asks the backend to persist a checkpoint when the run
	// completes.
	CheckpointAtEnd bool
}

// RunResult summarizes a completed training run.
type RunResult struct {
	RunID            string             `json:"run_id"`
	Iterations       int                `json:"iterations"`
	Episodes         int                `json:"episodes"`
	TotalTimeSteps   int                `json:"total_time_steps"`
	PolicyRewardMean map[string]float64 `json:"policy_reward_mean"`
	CheckpointDir    string             `json:"checkpoint_dir,omitempty"`
}

// RunLoop is the narrow seam to the training framework: submit one trainer
// configuration, block until the run finishes, receive a result. Everything
// behind it (rollout workers, model execution, checkpointing) is the
// backend's responsibility.
type RunLoop interface {
	Run(ctx context.Context, req *RunRequest) (*RunResult, error)
}
