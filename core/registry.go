package core

import "sync"

// ParametricModelName is the name the parametric-actions model is registered
// under; policy options reference it so the training backend can resolve it.
const ParametricModelName = "parametric_actions_model"

// ModelConstructor builds a named computation graph for the given space
// sizes. The graph itself is opaque to this layer.
type ModelConstructor func(observationSize, actionSize int) any

type registry struct {
	mtx    *sync.Mutex
	envs   map[string]EnvironmentConstructor
	models map[string]ModelConstructor
}

var defaultRegistry = &registry{
	mtx:    &sync.Mutex{},
	envs:   make(map[string]EnvironmentConstructor),
	models: make(map[string]ModelConstructor),
}

// RegisterEnvironment makes an environment factory resolvable by id. A later
// registration under the same id replaces the earlier one.
func RegisterEnvironment(id string, c EnvironmentConstructor) {
	defaultRegistry.mtx.Lock()
	defer defaultRegistry.mtx.Unlock()
	defaultRegistry.envs[id] = c
}

// LookupEnvironment resolves a registered environment factory.
func LookupEnvironment(id string) (EnvironmentConstructor, bool) {
	defaultRegistry.mtx.Lock()
	defer defaultRegistry.mtx.Unlock()
	c, ok := defaultRegistry.envs[id]
	return c, ok
}

// RegisterModel makes a model constructor resolvable by name.
func RegisterModel(name string, c ModelConstructor) {
	defaultRegistry.mtx.Lock()
	defer defaultRegistry.mtx.Unlock()
	defaultRegistry.models[name] = c
}

// LookupModel resolves a registered model constructor.
func LookupModel(name string) (ModelConstructor, bool) {
	defaultRegistry.mtx.Lock()
	defer defaultRegistry.mtx.Unlock()
	c, ok := defaultRegistry.models[name]
	return c, ok
}
