package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Composition is a sequential or parallel arrangement of stages.
type Composition interface {
	// lower adds the composition's steps to b, each depending on deps,
	// and returns the steps a successor has to wait for.
	lower(b *graphBuilder, deps []InternedString) ([]InternedString, error)
	// describe renders the composition for listings.
	describe(sb *strings.Builder)
	stages(yield func(*Stage) bool) bool
}

type stageNode struct {
	stage *Stage
}

type seriesNode struct {
	children []Composition
}

type parallelNode struct {
	children []Composition
}

// Run wraps a single stage as a composition.
func Run(s *Stage) Composition {
	return stageNode{stage: s}
}

// Series runs children in strict left-to-right order. Each child starts only
// after everything in the previous child has completed.
func Series(children ...Composition) Composition {
	return seriesNode{children: children}
}

// Parallel starts all children together and completes when all of them complete.
func Parallel(children ...Composition) Composition {
	return parallelNode{children: children}
}

func (n stageNode) lower(b *graphBuilder, deps []InternedString) ([]InternedString, error) {
	if n.stage == nil {
		return nil, Annotate(ErrInvalidStage, "reason", "nil stage")
	}
	if err := n.stage.Validate(); err != nil {
		return nil, err
	}
	name := b.uniqueName(n.stage.Name)
	step := &Step{
		Name:         name,
		Stage:        n.stage,
		Dependencies: append([]InternedString(nil), deps...),
	}
	if err := b.graph.AddStep(step); err != nil {
		return nil, err
	}
	return []InternedString{name}, nil
}

func (n seriesNode) lower(b *graphBuilder, deps []InternedString) ([]InternedString, error) {
	if len(n.children) == 0 {
		return nil, Annotate(ErrEmptyComposition, "kind", "series")
	}
	exits := deps
	for _, child := range n.children {
		next, err := child.lower(b, exits)
		if err != nil {
			return nil, err
		}
		exits = next
	}
	return exits, nil
}

func (n parallelNode) lower(b *graphBuilder, deps []InternedString) ([]InternedString, error) {
	if len(n.children) == 0 {
		return nil, Annotate(ErrEmptyComposition, "kind", "parallel")
	}
	var exits []InternedString
	for _, child := range n.children {
		next, err := child.lower(b, deps)
		if err != nil {
			return nil, err
		}
		exits = append(exits, next...)
	}
	return exits, nil
}

func (n stageNode) describe(sb *strings.Builder) {
	if n.stage != nil {
		sb.WriteString(n.stage.Name)
	}
}

func (n seriesNode) describe(sb *strings.Builder) {
	describeChildren(sb, n.children, " -> ")
}

func (n parallelNode) describe(sb *strings.Builder) {
	sb.WriteString("[")
	describeChildren(sb, n.children, " | ")
	sb.WriteString("]")
}

func describeChildren(sb *strings.Builder, children []Composition, sep string) {
	for i, child := range children {
		if i > 0 {
			sb.WriteString(sep)
		}
		if _, nested := child.(seriesNode); nested && sep != " -> " {
			sb.WriteString("(")
			child.describe(sb)
			sb.WriteString(")")
			continue
		}
		child.describe(sb)
	}
}

func (n stageNode) stages(yield func(*Stage) bool) bool {
	return n.stage == nil || yield(n.stage)
}

func (n seriesNode) stages(yield func(*Stage) bool) bool {
	for _, c := range n.children {
		if !c.stages(yield) {
			return false
		}
	}
	return true
}

func (n parallelNode) stages(yield func(*Stage) bool) bool {
	for _, c := range n.children {
		if !c.stages(yield) {
			return false
		}
	}
	return true
}

// TaskGraph is a named pipeline entry point.
type TaskGraph struct {
	Name        string
	Description string
	Root        Composition
}

// Compile lowers the composition into a validated step graph.
// A stage used more than once gets a "#n" suffix on later occurrences.
func (tg *TaskGraph) Compile() (*Graph, error) {
	if tg.Root == nil {
		return nil, Annotate(ErrEmptyComposition, "pipeline", tg.Name)
	}
	b := &graphBuilder{graph: NewGraph(tg.Name), seen: make(map[string]int)}
	if _, err := tg.Root.lower(b, nil); err != nil {
		return nil, zerr.With(err, "pipeline", tg.Name)
	}
	if err := b.graph.Validate(); err != nil {
		return nil, zerr.With(err, "pipeline", tg.Name)
	}
	return b.graph, nil
}

// Stages lists the stages of the graph in declaration order.
func (tg *TaskGraph) Stages() []*Stage {
	var out []*Stage
	if tg.Root == nil {
		return out
	}
	tg.Root.stages(func(s *Stage) bool {
		out = append(out, s)
		return true
	})
	return out
}

// Describe renders the composition, e.g. "clear -> [(html -> templates) | fonts]".
func (tg *TaskGraph) Describe() string {
	var sb strings.Builder
	if tg.Root != nil {
		tg.Root.describe(&sb)
	}
	return sb.String()
}

type graphBuilder struct {
	graph *Graph
	seen  map[string]int
}

func (b *graphBuilder) uniqueName(name string) InternedString {
	b.seen[name]++
	if n := b.seen[name]; n > 1 {
		return NewInternedString(name + "#" + strconv.Itoa(n))
	}
	return NewInternedString(name)
}
