// Package pipeline executes compiled task graphs.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner executes task graphs on goroutines, one per running step.
type Runner struct {
	stages      ports.StageRunner
	tracer      ports.Tracer
	metrics     ports.Metrics
	concurrency int
}

var _ ports.PipelineRunner = (*Runner)(nil)

// NewRunner creates a Runner. A concurrency of 0 leaves the number of
// simultaneously running steps unbounded. metrics may be nil.
func NewRunner(stages ports.StageRunner, tracer ports.Tracer, metrics ports.Metrics, concurrency int) *Runner {
	return &Runner{
		stages:      stages,
		tracer:      tracer,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// Run executes tg and waits for it to finish.
func (r *Runner) Run(ctx context.Context, tg *domain.TaskGraph) error {
	return <-r.Start(ctx, tg)
}

// Start begins executing tg and returns its completion signal.
// The channel receives exactly one value: nil on success, otherwise the
// joined stage failures wrapped in domain.ErrPipelineFailed.
func (r *Runner) Start(ctx context.Context, tg *domain.TaskGraph) <-chan error {
	done := make(chan error, 1)

	graph, err := tg.Compile()
	if err != nil {
		done <- err
		return done
	}

	go func() {
		begin := time.Now()
		err := r.execute(ctx, tg.Name, graph)
		if r.metrics != nil {
			r.metrics.ObservePipeline(tg.Name, time.Since(begin), err)
		}
		done <- err
	}()
	return done
}

func (r *Runner) execute(ctx context.Context, pipeline string, graph *domain.Graph) error {
	state := newRunState(ctx, r, pipeline, graph)
	r.emitPlan(ctx, pipeline, graph)

	if err := state.loop(); err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrPipelineFailed), "pipeline", pipeline)
	}
	return nil
}

func (r *Runner) emitPlan(ctx context.Context, pipeline string, graph *domain.Graph) {
	steps := make([]string, 0, graph.StepCount())
	deps := make(map[string][]string, graph.StepCount())
	for step := range graph.Walk() {
		name := step.Name.String()
		steps = append(steps, name)
		names := make([]string, len(step.Dependencies))
		for i, d := range step.Dependencies {
			names[i] = d.String()
		}
		deps[name] = names
	}
	r.tracer.EmitPlan(ctx, steps, deps, []string{pipeline})
}

type result struct {
	step domain.InternedString
	err  error
}

type runState struct {
	ctx      context.Context
	r        *Runner
	pipeline string
	graph    *domain.Graph

	inDegree  map[domain.InternedString]int
	ready     []domain.InternedString
	active    int
	resultsCh chan result
	errs      error
	failed    bool
}

func newRunState(ctx context.Context, r *Runner, pipeline string, graph *domain.Graph) *runState {
	inDegree := make(map[domain.InternedString]int, graph.StepCount())
	var ready []domain.InternedString
	for step := range graph.Walk() {
		inDegree[step.Name] = len(step.Dependencies)
		if len(step.Dependencies) == 0 {
			ready = append(ready, step.Name)
		}
	}

	return &runState{
		ctx:       ctx,
		r:         r,
		pipeline:  pipeline,
		graph:     graph,
		inDegree:  inDegree,
		ready:     ready,
		resultsCh: make(chan result, graph.StepCount()),
	}
}

// loop schedules ready steps until nothing is ready or running.
// After the first failure or cancellation no new step starts, but steps
// already running are waited for and their results kept.
func (s *runState) loop() error {
	done := s.ctx.Done()
	for {
		s.schedule()
		if s.active == 0 {
			break
		}

		select {
		case res := <-s.resultsCh:
			s.handleResult(res)
		case <-done:
			// Only wait for the steps still running from here on.
			done = nil
		}
	}

	if err := s.ctx.Err(); err != nil {
		s.errs = errors.Join(s.errs, err)
	}
	return s.errs
}

func (s *runState) canStart() bool {
	if s.failed || s.ctx.Err() != nil || len(s.ready) == 0 {
		return false
	}
	return s.r.concurrency <= 0 || s.active < s.r.concurrency
}

func (s *runState) schedule() {
	for s.canStart() {
		name := s.ready[0]
		s.ready = s.ready[1:]
		step, _ := s.graph.GetStep(name)

		s.active++
		go s.executeStep(step)
	}
}

func (s *runState) executeStep(step domain.Step) {
	// The span must end before the result is sent, so the renderer has seen
	// the completion by the time the pipeline reports back.
	res := func() result {
		name := step.Name.String()
		ctx, span := s.r.tracer.Start(s.ctx, name, ports.WithPipeline(s.pipeline))
		defer span.End()
		span.SetAttribute("sitepipe.stage.kind", string(step.Stage.Kind))

		begin := time.Now()
		err := s.r.stages.RunStage(ctx, step.Stage, span)
		if s.r.metrics != nil {
			s.r.metrics.ObserveStage(s.pipeline, name, time.Since(begin), err)
		}
		if err != nil {
			span.RecordError(err)
		}
		return result{step: step.Name, err: err}
	}()

	s.resultsCh <- res
}

func (s *runState) handleResult(res result) {
	s.active--

	if res.err != nil {
		s.failed = true
		s.errs = errors.Join(s.errs, zerr.With(domain.Wrap(res.err, domain.ErrStageFailed), "stage", res.step.String()))
		return
	}

	for _, dep := range s.graph.Dependents(res.step) {
		s.inDegree[dep]--
		if s.inDegree[dep] == 0 {
			s.ready = append(s.ready, dep)
		}
	}
}
