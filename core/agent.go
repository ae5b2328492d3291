package core

// Policy picks actions for the agents assigned to it and observes step
// transitions. Fixed baselines implement the update methods as no-ops.
type Policy interface {
	ResetEpisode(*EpisodeContext)
	UpdateEpisode(*EpisodeContext)
	PickAction(*StepContext, State, []Action) Action
	UpdateStep(*StepContext, State, Action, State)
	Reset()
}

type PolicyConstructor interface {
	NewPolicy() Policy
}
