package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// Registry holds the pipelines and watch rules of one process.
// It is built once at startup and passed to whichever entry point runs.
type Registry struct {
	pipelines map[string]*TaskGraph
	rules     []WatchRule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{pipelines: make(map[string]*TaskGraph)}
}

// Register adds a pipeline. Names must be unique and the graph must compile.
func (r *Registry) Register(tg *TaskGraph) error {
	if _, exists := r.pipelines[tg.Name]; exists {
		return Annotate(ErrPipelineAlreadyExists, "pipeline", tg.Name)
	}
	if _, err := tg.Compile(); err != nil {
		return err
	}
	r.pipelines[tg.Name] = tg
	return nil
}

// Get returns the pipeline registered under name.
func (r *Registry) Get(name string) (*TaskGraph, error) {
	tg, ok := r.pipelines[name]
	if !ok {
		return nil, Annotate(ErrPipelineNotFound, "pipeline", name)
	}
	return tg, nil
}

// Names returns the registered pipeline names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AddWatchRule registers a watch rule. Its pipeline must already be registered.
func (r *Registry) AddWatchRule(rule WatchRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	if _, err := r.Get(rule.Pipeline); err != nil {
		return zerr.With(err, "rule", rule.Name)
	}
	for _, existing := range r.rules {
		if existing.Name == rule.Name {
			return Annotate(ErrInvalidWatchRule, "duplicate_rule", rule.Name)
		}
	}
	r.rules = append(r.rules, rule)
	return nil
}

// WatchRules returns the rules in registration order.
func (r *Registry) WatchRules() []WatchRule {
	return slices.Clone(r.rules)
}
