package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cardrl/scopone-training/util"
)

// PolicySpec is one row of the policy table handed to the trainer: the
// implementation class, the spaces it operates on, and its class options.
type PolicySpec struct {
	Class           PolicyClass
	ObservationSize int
	ActionSize      int
	Options         map[string]any
}

// PolicyTable maps policy names to their specs.
type PolicyTable map[string]PolicySpec

// AgentPolicyMap maps agent ids to policy names. Every value must be a key of
// the policy table.
type AgentPolicyMap map[string]string

// PolicyAssignFunc resolves the policy acting for an agent id.
type PolicyAssignFunc func(agentID string) string

// TrainerConfig is the bundle handed to one trainer class: the environment
// it trains on, the full policy table, the subset of policies this trainer
// updates, and the assignment callback.
type TrainerConfig struct {
	EnvID           string
	Policies        PolicyTable
	PoliciesToTrain []string
	AssignPolicy    PolicyAssignFunc
	Resources       map[string]any
}

// Trainer assembles and validates the training configuration for one
// environment and delegates execution to a run loop. Single use: construct,
// then Train once.
type Trainer struct {
	envID          string
	experimentName string
	agentToPolicy  AgentPolicyMap
	policyToClass  map[string]PolicyClass
	resources      map[string]any
	model          ModelConstructor
	loop           RunLoop
	logger         *logrus.Logger

	configs map[TrainerClass]*TrainerConfig
}

type TrainerOption func(*Trainer)

// WithExperimentName overrides the experiment name (defaults to the
// environment id).
func WithExperimentName(name string) TrainerOption {
	return func(t *Trainer) { t.experimentName = name }
}

// WithResources merges free-form resource overrides (worker counts, GPU
// settings) into every trainer config. Keys are the backend's concern.
func WithResources(res map[string]any) TrainerOption {
	return func(t *Trainer) { t.resources = res }
}

// WithRunLoop sets the training backend.
func WithRunLoop(loop RunLoop) TrainerOption {
	return func(t *Trainer) { t.loop = loop }
}

// WithModel registers a custom model constructor under ParametricModelName.
func WithModel(c ModelConstructor) TrainerOption {
	return func(t *Trainer) { t.model = c }
}

// WithLogger overrides the logger (defaults to the standard logrus logger).
func WithLogger(l *logrus.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = l }
}

// NewTrainer validates the policy table and agent assignments, registers the
// environment factory and custom model, and assembles the per-trainer
// configurations. Validation failures are immediate and fatal; nothing is
// registered on error.
func NewTrainer(envID string, envC EnvironmentConstructor, agents AgentPolicyMap, policyClasses map[string]PolicyClass, opts ...TrainerOption) (*Trainer, error) {
	t := &Trainer{
		envID:          envID,
		experimentName: envID,
		agentToPolicy:  agents,
		policyToClass:  policyClasses,
		logger:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	unsupported := make([]string, 0)
	for name, class := range policyClasses {
		if !class.Supported() {
			unsupported = append(unsupported, name)
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicy, strings.Join(unsupported, ", "))
	}

	unknown := make([]string, 0)
	for agent, policy := range agents {
		if _, ok := policyClasses[policy]; !ok {
			unknown = append(unknown, fmt.Sprintf("%s -> %s", agent, policy))
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, strings.Join(unknown, ", "))
	}

	if envC == nil {
		registered, ok := LookupEnvironment(envID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEnvironment, envID)
		}
		envC = registered
	} else {
		RegisterEnvironment(envID, envC)
	}
	if t.model != nil {
		RegisterModel(ParametricModelName, t.model)
	}

	// Spaces come from a throwaway instance, the same way every worker will
	// see them.
	env := envC.NewEnvironment(0)
	t.configs = t.collectTrainerConfigs(env.ObservationSize(), env.ActionSize())

	return t, nil
}

// collectTrainerConfigs builds the full policy table and groups the trainable
// policies by the trainer class responsible for them. Policies with
// TrainerNone never enter a policies-to-train set but stay in the shared
// table so every trainer can execute them.
func (t *Trainer) collectTrainerConfigs(observationSize, actionSize int) map[TrainerClass]*TrainerConfig {
	policies := make(PolicyTable)
	for name, class := range t.policyToClass {
		policies[name] = PolicySpec{
			Class:           class,
			ObservationSize: observationSize,
			ActionSize:      actionSize,
			Options:         class.DefaultOptions(),
		}
	}

	toTrain := make(map[TrainerClass]map[string]struct{})
	for _, policy := range t.agentToPolicy {
		trainer := t.policyToClass[policy].Trainer()
		if trainer == TrainerNone {
			continue
		}
		if _, ok := toTrain[trainer]; !ok {
			toTrain[trainer] = make(map[string]struct{})
		}
		toTrain[trainer][policy] = struct{}{}
	}

	assign := func(agentID string) string { return t.agentToPolicy[agentID] }

	configs := make(map[TrainerClass]*TrainerConfig)
	for trainer, set := range toTrain {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		configs[trainer] = &TrainerConfig{
			EnvID:           t.envID,
			Policies:        policies,
			PoliciesToTrain: names,
			AssignPolicy:    assign,
			Resources:       util.CopyAnyMap(t.resources),
		}
	}
	return configs
}

// TrainerConfigs returns the assembled per-trainer configurations.
func (t *Trainer) TrainerConfigs() map[TrainerClass]*TrainerConfig {
	return t.configs
}

// ExperimentName returns the effective experiment name.
func (t *Trainer) ExperimentName() string {
	return t.experimentName
}

// Train forwards the single assembled trainer configuration to the run loop
// and blocks until it returns, reporting elapsed wall-clock time. Requests
// spanning more than one trainer class fail with ErrMultiTrainer before the
// run loop is ever invoked.
func (t *Trainer) Train(ctx context.Context, stop StopCriteria, restore string) (*RunResult, error) {
	if len(t.configs) > 1 {
		classes := make([]string, 0, len(t.configs))
		for trainer := range t.configs {
			classes = append(classes, trainer.String())
		}
		sort.Strings(classes)
		return nil, fmt.Errorf("%w: %s (assign all agents to policies of one trainer class)", ErrMultiTrainer, strings.Join(classes, ", "))
	}
	if len(t.configs) == 0 {
		return nil, ErrNothingToTrain
	}
	if t.loop == nil {
		return nil, ErrNoRunLoop
	}

	var trainer TrainerClass
	var config *TrainerConfig
	for class, cfg := range t.configs {
		trainer, config = class, cfg
	}

	start := time.Now()
	result, err := t.loop.Run(ctx, &RunRequest{
		Name:            t.experimentName,
		Trainer:         trainer,
		Config:          config,
		Stop:            stop,
		Restore:         restore,
		CheckpointAtEnd: true,
	})
	if err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"experiment": t.experimentName,
		"trainer":    trainer.String(),
		"duration":   time.Since(start).Round(time.Second).String(),
		"checkpoint": result.CheckpointDir,
	}).Info("training finished")
	return result, nil
}
