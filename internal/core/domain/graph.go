// Package domain contains the core domain models of the asset pipeline:
// stages, compositions, compiled step graphs, watch rules and configuration.
package domain

import (
	"iter"
	"strings"
)

// Step is one scheduled stage invocation inside a compiled graph.
type Step struct {
	Name         InternedString
	Stage        *Stage
	Dependencies []InternedString
}

// Graph is the compiled dependency graph of a TaskGraph.
type Graph struct {
	name           string
	steps          map[InternedString]Step
	insertion      []InternedString
	dependents     map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph(name string) *Graph {
	return &Graph{
		name:       name,
		steps:      make(map[InternedString]Step),
		dependents: make(map[InternedString][]InternedString),
	}
}

// Name returns the name of the pipeline this graph was compiled from.
func (g *Graph) Name() string {
	return g.name
}

// AddStep adds a step to the graph.
// It returns an error if a step with the same name already exists.
func (g *Graph) AddStep(s *Step) error {
	if _, exists := g.steps[s.Name]; exists {
		return Annotate(ErrStepAlreadyExists, "step", s.Name.String())
	}
	g.steps[s.Name] = *s
	g.insertion = append(g.insertion, s.Name)
	for _, dep := range s.Dependencies {
		g.dependents[dep] = append(g.dependents[dep], s.Name)
	}
	return nil
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order used by Walk.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.steps))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		step, exists := g.steps[u]
		if !exists {
			return Annotate(ErrMissingDependency, "dependency", u.String())
		}

		for _, dep := range step.Dependencies {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Insertion order keeps Walk deterministic across runs.
	for _, name := range g.insertion {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return Annotate(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields steps in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.steps[name]) {
				return
			}
		}
	}
}

// GetStep returns the step with the given name.
func (g *Graph) GetStep(name InternedString) (Step, bool) {
	s, ok := g.steps[name]
	return s, ok
}

// Dependents returns the steps that depend directly on name.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// StepCount returns the number of steps in the graph.
func (g *Graph) StepCount() int {
	return len(g.steps)
}
