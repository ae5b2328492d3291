package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootCommand builds the CLI. The environment named by --env must be
// registered (core.RegisterEnvironment) by the embedding program before
// Execute is called.
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scopone-training",
		Short: "Assemble and launch multi-agent card game training runs",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env values fill in flags that were not set explicitly.
			godotenv.Load()
			if v := os.Getenv("SCOPONE_SAVE_PATH"); v != "" && !cmd.Flags().Changed("save-path") {
				savePath = v
			}
			if v := os.Getenv("SCOPONE_LOG_LEVEL"); v != "" && !cmd.Flags().Changed("log-level") {
				logLevel = v
			}

			UpdateFlags()

			level, err := logrus.ParseLevel(flags.LogLevel)
			if err != nil {
				level = logrus.InfoLevel
			}
			logrus.SetLevel(level)

			flags.Record()
		},
	}
	AddFlags(cmd)

	cmd.AddCommand(
		TrainCommand(),
	)

	return cmd
}
