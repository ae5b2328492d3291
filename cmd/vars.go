package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	flags *Flags = DefaultFlags()

	envID          string
	experimentName string
	agents         map[string]string
	policies       map[string]string
	savePath       string
	logLevel       string
	restore        string

	iterations             int
	rewardMean             float64
	episodesPerIteration   int
	horizon                int
	episodeTimeout         int
	maxConsecutiveErrors   int
	maxConsecutiveTimeouts int
)

func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&envID, "env", flags.EnvID, "Registered environment id")
	cmd.PersistentFlags().StringVar(&experimentName, "experiment", "", "Experiment name (defaults to the environment id)")
	cmd.PersistentFlags().StringToStringVar(&agents, "agents", flags.Agents, "Agent to policy assignments (agent=policy,...)")
	cmd.PersistentFlags().StringToStringVar(&policies, "policies", flags.Policies, "Policy to class assignments (policy=ppo|dqn|random,...)")
	cmd.PersistentFlags().StringVar(&savePath, "save-path", flags.SavePath, "Path to save results")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", flags.LogLevel, "Log level")
	cmd.PersistentFlags().StringVar(&restore, "restore", "", "Checkpoint directory to restore from")

	cmd.PersistentFlags().IntVar(&iterations, "iterations", flags.Iterations, "Training iterations to run")
	cmd.PersistentFlags().Float64Var(&rewardMean, "reward-mean", flags.RewardMean, "Stop once the trained policies reach this mean episode reward (0 to disable)")
	cmd.PersistentFlags().IntVar(&episodesPerIteration, "episodes-per-iteration", flags.EpisodesPerIteration, "Episodes per training iteration")
	cmd.PersistentFlags().IntVar(&horizon, "horizon", flags.Horizon, "Horizon")
	cmd.PersistentFlags().IntVar(&episodeTimeout, "episode-timeout", int(flags.EpisodeTimeout.Seconds()), "Episode timeout in seconds")
	cmd.PersistentFlags().IntVar(&maxConsecutiveErrors, "max-consecutive-errors", flags.MaxConsecutiveErrors, "Maximum number of consecutive errors")
	cmd.PersistentFlags().IntVar(&maxConsecutiveTimeouts, "max-consecutive-timeouts", flags.MaxConsecutiveTimeouts, "Maximum number of consecutive timeouts")
}

func UpdateFlags() {
	flags.EnvID = envID
	flags.ExperimentName = experimentName
	flags.Agents = agents
	flags.Policies = policies
	flags.SavePath = savePath
	flags.LogLevel = logLevel
	flags.Restore = restore

	flags.Iterations = iterations
	flags.RewardMean = rewardMean
	flags.EpisodesPerIteration = episodesPerIteration
	flags.Horizon = horizon
	flags.EpisodeTimeout = time.Duration(episodeTimeout) * time.Second
	flags.MaxConsecutiveErrors = maxConsecutiveErrors
	flags.MaxConsecutiveTimeouts = maxConsecutiveTimeouts
}
