package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/core/domain"
)

func copyStage(name string) *domain.Stage {
	return &domain.Stage{Name: name, Kind: domain.KindCopy, Inputs: []string{"src/" + name + "/**/*"}}
}

func depsOf(t *testing.T, g *domain.Graph, name string) []string {
	t.Helper()
	step, ok := g.GetStep(domain.NewInternedString(name))
	require.True(t, ok, "step %s not found", name)
	out := make([]string, len(step.Dependencies))
	for i, d := range step.Dependencies {
		out[i] = d.String()
	}
	return out
}

func TestTaskGraph_CompileSeries(t *testing.T) {
	tg := &domain.TaskGraph{
		Name: "chain",
		Root: domain.Series(domain.Run(copyStage("a")), domain.Run(copyStage("b")), domain.Run(copyStage("c"))),
	}

	g, err := tg.Compile()
	require.NoError(t, err)

	assert.Empty(t, depsOf(t, g, "a"))
	assert.Equal(t, []string{"a"}, depsOf(t, g, "b"))
	assert.Equal(t, []string{"b"}, depsOf(t, g, "c"))

	var order []string
	for step := range g.Walk() {
		order = append(order, step.Name.String())
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTaskGraph_CompileParallelJoin(t *testing.T) {
	tg := &domain.TaskGraph{
		Name: "fan",
		Root: domain.Series(
			domain.Run(copyStage("first")),
			domain.Parallel(
				domain.Series(domain.Run(copyStage("x1")), domain.Run(copyStage("x2"))),
				domain.Run(copyStage("y")),
			),
			domain.Run(copyStage("last")),
		),
	}

	g, err := tg.Compile()
	require.NoError(t, err)

	assert.Equal(t, []string{"first"}, depsOf(t, g, "x1"))
	assert.Equal(t, []string{"first"}, depsOf(t, g, "y"))
	assert.Equal(t, []string{"x1"}, depsOf(t, g, "x2"))
	assert.ElementsMatch(t, []string{"x2", "y"}, depsOf(t, g, "last"))
	assert.ElementsMatch(t, []string{"x1", "y"}, stepNames(g.Dependents(domain.NewInternedString("first"))))
}

func TestTaskGraph_DuplicateStageGetsSuffix(t *testing.T) {
	s := copyStage("copy")
	tg := &domain.TaskGraph{Name: "twice", Root: domain.Series(domain.Run(s), domain.Run(s))}

	g, err := tg.Compile()
	require.NoError(t, err)
	assert.Equal(t, 2, g.StepCount())
	assert.Equal(t, []string{"copy"}, depsOf(t, g, "copy#2"))
}

func TestTaskGraph_CompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		root    domain.Composition
		wantErr error
	}{
		{name: "nil root", root: nil, wantErr: domain.ErrEmptyComposition},
		{name: "empty series", root: domain.Series(), wantErr: domain.ErrEmptyComposition},
		{name: "empty parallel", root: domain.Series(domain.Run(copyStage("a")), domain.Parallel()), wantErr: domain.ErrEmptyComposition},
		{name: "stage without inputs", root: domain.Run(&domain.Stage{Name: "bad", Kind: domain.KindCopy}), wantErr: domain.ErrInvalidStage},
		{name: "stage without kind", root: domain.Run(&domain.Stage{Name: "bad"}), wantErr: domain.ErrInvalidStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := &domain.TaskGraph{Name: "broken", Root: tt.root}
			_, err := tg.Compile()
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskGraph_DescribeAndStages(t *testing.T) {
	tg := &domain.TaskGraph{
		Name: "build",
		Root: domain.Series(
			domain.Run(&domain.Stage{Name: "clear", Kind: domain.KindClear}),
			domain.Parallel(
				domain.Series(domain.Run(copyStage("html")), domain.Run(copyStage("templates"))),
				domain.Run(copyStage("fonts")),
			),
		),
	}

	assert.Equal(t, "clear -> [(html -> templates) | fonts]", tg.Describe())

	var names []string
	for _, s := range tg.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"clear", "html", "templates", "fonts"}, names)
}

func TestGraph_ValidateDetectsCycle(t *testing.T) {
	g := domain.NewGraph("loop")
	a := domain.NewInternedString("a")
	b := domain.NewInternedString("b")
	require.NoError(t, g.AddStep(&domain.Step{Name: a, Stage: copyStage("a"), Dependencies: []domain.InternedString{b}}))
	require.NoError(t, g.AddStep(&domain.Step{Name: b, Stage: copyStage("b"), Dependencies: []domain.InternedString{a}}))

	err := g.Validate()
	require.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestGraph_ValidateMissingDependency(t *testing.T) {
	g := domain.NewGraph("dangling")
	require.NoError(t, g.AddStep(&domain.Step{
		Name:         domain.NewInternedString("a"),
		Stage:        copyStage("a"),
		Dependencies: domain.NewInternedStrings([]string{"ghost"}),
	}))

	require.ErrorIs(t, g.Validate(), domain.ErrMissingDependency)
}

func TestGraph_AddStepDuplicate(t *testing.T) {
	g := domain.NewGraph("dup")
	step := &domain.Step{Name: domain.NewInternedString("a"), Stage: copyStage("a")}
	require.NoError(t, g.AddStep(step))
	require.ErrorIs(t, g.AddStep(step), domain.ErrStepAlreadyExists)
}

func stepNames(in []domain.InternedString) []string {
	out := make([]string, len(in))
	for i, n := range in {
		out[i] = n.String()
	}
	return out
}
