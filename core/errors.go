package core

import "errors"

var (
	// Construction-time validation failures. Fatal, surfaced before any
	// training begins.
	ErrUnsupportedPolicy = errors.New("unsupported policy class")
	ErrUnknownPolicy     = errors.New("agent assigned to unknown policy")

	// ErrMultiTrainer marks the permanent unsupported-configuration failure:
	// synchronizing parameters across heterogeneous trainers is unimplemented,
	// so training across more than one trainer class is rejected outright.
	ErrMultiTrainer = errors.New("training across multiple trainer classes is not implemented")

	// ErrNothingToTrain is returned when every configured policy is a fixed
	// baseline and no trainer config exists to run.
	ErrNothingToTrain = errors.New("no trainable policies configured")

	ErrUnknownEnvironment = errors.New("environment id not registered")

	ErrNoRunLoop = errors.New("no run loop configured")
)
