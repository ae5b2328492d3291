package core

// PolicyClass enumerates the policy implementations this layer knows how to
// configure. The set is closed: validation rejects anything else up front.
type PolicyClass uint8

const (
	PolicyUnknown PolicyClass = iota
	PolicyPPO
	PolicyDQN
	PolicyRandom
)

func (c PolicyClass) String() string {
	switch c {
	case PolicyPPO:
		return "ppo"
	case PolicyDQN:
		return "dqn"
	case PolicyRandom:
		return "random"
	}
	return "unknown"
}

// ParsePolicyClass maps a class name (as it appears in CLI flags or config
// files) back to the enumeration. Returns PolicyUnknown for anything outside
// the supported set.
func ParsePolicyClass(s string) PolicyClass {
	switch s {
	case "ppo":
		return PolicyPPO
	case "dqn":
		return PolicyDQN
	case "random":
		return PolicyRandom
	}
	return PolicyUnknown
}

// Supported reports whether the class is in the fixed supported set.
func (c PolicyClass) Supported() bool {
	switch c {
	case PolicyPPO, PolicyDQN, PolicyRandom:
		return true
	}
	return false
}

// TrainerClass enumerates the trainer implementations policies route to.
type TrainerClass uint8

const (
	// TrainerNone marks fixed baseline policies with no learnable parameters.
	TrainerNone TrainerClass = iota
	TrainerPPO
	TrainerDQN
)

func (t TrainerClass) String() string {
	switch t {
	case TrainerPPO:
		return "ppo_trainer"
	case TrainerDQN:
		return "dqn_trainer"
	}
	return "none"
}

// Trainer returns the trainer class responsible for updating this policy's
// parameters, TrainerNone for fixed baselines.
func (c PolicyClass) Trainer() TrainerClass {
	switch c {
	case PolicyPPO:
		return TrainerPPO
	case PolicyDQN:
		return TrainerDQN
	}
	return TrainerNone
}

// Trainable reports whether a trainer updates this policy.
func (c PolicyClass) Trainable() bool {
	return c.Trainer() != TrainerNone
}

// DefaultOptions returns the per-class policy configuration handed to the
// trainer alongside the spaces.
func (c PolicyClass) DefaultOptions() map[string]any {
	switch c {
	case PolicyPPO:
		return map[string]any{
			"model": map[string]any{
				"custom_model": ParametricModelName,
			},
			// Filters would need to be synchronized to the DQN side as
			// well, so they stay disabled.
			"observation_filter": "NoFilter",
		}
	case PolicyDQN:
		return map[string]any{
			"model": map[string]any{
				"custom_model": ParametricModelName,
			},
			// Post-model hidden layers and dueling heads would process the
			// masked action values again and break the masking.
			"hiddens": []any{},
			"dueling": false,
		}
	}
	return map[string]any{}
}
