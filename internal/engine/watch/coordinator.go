package watch

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

// State is the lifecycle position of one watch rule.
type State uint8

const (
	// Idle means nothing is pending for the rule.
	Idle State = iota
	// Triggered means a matching change arrived and the debounce window is open.
	Triggered
	// Running means the rule's pipeline is executing.
	Running
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Triggered:
		return "triggered"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

type ruleState struct {
	rule      domain.WatchRule
	graph     *domain.TaskGraph
	debouncer *Debouncer

	state   State
	armed   bool
	pending bool
	queued  []string
}

// Coordinator maps change events to the watch rules they match and re-runs
// each rule's pipeline, at most one run per rule at a time.
type Coordinator struct {
	root     string
	runner   ports.PipelineRunner
	reloader ports.Reloader
	logger   ports.Logger
	debounce time.Duration

	mu     sync.Mutex
	rules  []*ruleState
	byName map[string]*ruleState
	ctx    context.Context
	closed bool
	wg     sync.WaitGroup
}

// NewCoordinator creates a Coordinator for the watch rules of reg.
// Event paths are matched relative to root.
func NewCoordinator(
	root string,
	reg *domain.Registry,
	runner ports.PipelineRunner,
	reloader ports.Reloader,
	logger ports.Logger,
	debounce time.Duration,
) (*Coordinator, error) {
	c := &Coordinator{
		root:     root,
		runner:   runner,
		reloader: reloader,
		logger:   logger,
		debounce: debounce,
		byName:   make(map[string]*ruleState),
	}

	for _, rule := range reg.WatchRules() {
		tg, err := reg.Get(rule.Pipeline)
		if err != nil {
			return nil, zerr.With(err, "rule", rule.Name)
		}
		rs := &ruleState{rule: rule, graph: tg}
		rs.debouncer = NewDebouncer(debounce, func(paths []string) { c.trigger(rs, paths) })
		c.rules = append(c.rules, rs)
		c.byName[rule.Name] = rs
	}
	return c, nil
}

// State returns the current state of the named rule.
func (c *Coordinator) State(rule string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rs, ok := c.byName[rule]
	if !ok {
		return Idle, false
	}
	return rs.state, true
}

// Run consumes events until the stream ends or ctx is cancelled, then waits
// for in-flight runs. When the stream ends on its own, changes still inside
// their debounce window are run before returning.
// The stream is expected to end once ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, events iter.Seq[ports.WatchEvent]) error {
	c.mu.Lock()
	c.ctx = ctx
	c.closed = false
	c.mu.Unlock()

	for ev := range events {
		if ctx.Err() != nil {
			break
		}
		c.dispatch(ev)
	}

	for _, rs := range c.rules {
		if ctx.Err() != nil {
			rs.debouncer.Stop()
			continue
		}
		rs.debouncer.Flush()
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()

	return ctx.Err()
}

func (c *Coordinator) dispatch(ev ports.WatchEvent) {
	rel, ok := c.relative(ev.Path)
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rs := range c.rules {
		if !rs.rule.Matches(rel) {
			continue
		}
		if rs.state == Idle {
			rs.state = Triggered
		}
		rs.armed = true
		rs.debouncer.Add(rel)
	}
}

func (c *Coordinator) relative(path string) (string, bool) {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// trigger is called when a rule's debounce window expires.
func (c *Coordinator) trigger(rs *ruleState, paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rs.armed = false
	if c.closed {
		return
	}
	if rs.state == Running {
		rs.pending = true
		rs.queued = mergePaths(rs.queued, paths)
		return
	}

	rs.state = Running
	c.wg.Add(1)
	go c.runRule(c.ctx, rs, paths)
}

func (c *Coordinator) runRule(ctx context.Context, rs *ruleState, paths []string) {
	defer c.wg.Done()

	for {
		c.runOnce(ctx, rs, paths)

		c.mu.Lock()
		if !rs.pending || ctx.Err() != nil {
			rs.pending = false
			rs.queued = nil
			rs.state = Idle
			if rs.armed {
				rs.state = Triggered
			}
			c.mu.Unlock()
			return
		}
		paths = rs.queued
		rs.pending = false
		rs.queued = nil
		c.mu.Unlock()
	}
}

func (c *Coordinator) runOnce(ctx context.Context, rs *ruleState, paths []string) {
	c.logger.Info(fmt.Sprintf("%s changed, running %s", describePaths(paths), rs.graph.Name))

	begin := time.Now()
	if err := c.runner.Run(ctx, rs.graph); err != nil {
		if ctx.Err() == nil {
			c.logger.Error(zerr.With(err, "rule", rs.rule.Name))
		}
		return
	}

	c.logger.Info(fmt.Sprintf("%s rebuilt in %s", rs.graph.Name, time.Since(begin).Round(time.Millisecond)))
	c.reloader.NotifyReload(domain.ReloadEvent{
		Rule:  rs.rule.Name,
		Kind:  rs.rule.Reload,
		Paths: paths,
		At:    time.Now(),
	})
}

func mergePaths(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func describePaths(paths []string) string {
	switch len(paths) {
	case 0:
		return "sources"
	case 1:
		return paths[0]
	default:
		return fmt.Sprintf("%s and %d more", paths[0], len(paths)-1)
	}
}
