package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cardrl/scopone-training/core"
	"github.com/cardrl/scopone-training/tune"
)

func TrainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train the configured policies on a registered environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			classes := make(map[string]core.PolicyClass, len(flags.Policies))
			for name, class := range flags.Policies {
				// Unsupported names parse to PolicyUnknown and fail trainer
				// validation with the offending policy named.
				classes[name] = core.ParsePolicyClass(class)
			}

			runner := tune.NewRunner(&tune.Config{
				EpisodesPerIteration:         flags.EpisodesPerIteration,
				Horizon:                      flags.Horizon,
				EpisodeTimeout:               flags.EpisodeTimeout,
				ThresholdConsecutiveErrors:   flags.MaxConsecutiveErrors,
				ThresholdConsecutiveTimeouts: flags.MaxConsecutiveTimeouts,
				SavePath:                     flags.SavePath,
				Alpha:                        0.3,
				Gamma:                        0.99,
				Temperature:                  1.0,
			}, logrus.StandardLogger())

			opts := []core.TrainerOption{core.WithRunLoop(runner)}
			if flags.ExperimentName != "" {
				opts = append(opts, core.WithExperimentName(flags.ExperimentName))
			}

			trainer, err := core.NewTrainer(flags.EnvID, nil, core.AgentPolicyMap(flags.Agents), classes, opts...)
			if err != nil {
				return err
			}

			result, err := trainer.Train(cmd.Context(), core.StopCriteria{
				TrainingIterations: flags.Iterations,
				EpisodeRewardMean:  flags.RewardMean,
			}, flags.Restore)
			if err != nil {
				return err
			}

			logrus.WithFields(logrus.Fields{
				"run":        result.RunID,
				"iterations": result.Iterations,
				"episodes":   result.Episodes,
				"rewards":    result.PolicyRewardMean,
				"checkpoint": result.CheckpointDir,
			}).Info("run complete")
			return nil
		},
	}
}
