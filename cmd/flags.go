package cmd

import (
	"path"
	"time"

	"github.com/cardrl/scopone-training/util"
)

type Flags struct {
	EnvID          string
	ExperimentName string
	// Agents maps agent ids to policy names, Policies maps policy names to
	// class names (ppo, dqn, random).
	Agents   map[string]string
	Policies map[string]string

	SavePath string
	LogLevel string
	Restore  string

	RunFlags
}

type RunFlags struct {
	Iterations           int
	RewardMean           float64
	EpisodesPerIteration int
	Horizon              int
	EpisodeTimeout       time.Duration

	MaxConsecutiveErrors   int
	MaxConsecutiveTimeouts int
}

func DefaultFlags() *Flags {
	return &Flags{
		EnvID: "scopone",
		Agents: map[string]string{
			"player_1": "ppo_policy",
			"player_2": "ppo_policy",
			"player_3": "ppo_policy",
			"player_4": "ppo_policy",
		},
		Policies: map[string]string{
			"ppo_policy":    "ppo",
			"random_policy": "random",
		},
		SavePath: "results",
		LogLevel: "info",
		RunFlags: RunFlags{
			Iterations:             100,
			EpisodesPerIteration:   100,
			Horizon:                50,
			EpisodeTimeout:         10 * time.Second,
			MaxConsecutiveErrors:   20,
			MaxConsecutiveTimeouts: 20,
		},
	}
}

func (f *Flags) Record() {
	util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}
