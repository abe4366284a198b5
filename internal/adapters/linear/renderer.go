// Package linear renders stage progress as chronological, prefixed log lines.
package linear

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/muesli/termenv"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/sitepipe/internal/ui/output"
	"go.trai.ch/sitepipe/internal/ui/style"
)

// Renderer implements ports.Renderer. Status lines go to stderr and stage
// output goes to stdout, one "[stage] line" per complete line.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	tasks map[string]*taskState
}

var _ ports.Renderer = (*Renderer)(nil)

type taskState struct {
	name   string
	depth  int
	start  time.Time
	buffer bytes.Buffer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithInteractive colors output for a terminal instead of a CI log.
func WithInteractive() Option {
	return func(r *Renderer) {
		r.output = output.New(r.stderr)
	}
}

// NewRenderer returns a renderer writing to stdout and stderr. Nil writers
// default to the process streams.
func NewRenderer(stdout, stderr io.Writer, opts ...Option) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	r := &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewCI(stderr),
		tasks:  make(map[string]*taskState),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start does nothing; the renderer is synchronous.
func (r *Renderer) Start(context.Context) error { return nil }

// Stop prints any partial lines still buffered.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, task := range r.tasks {
		r.flushLocked(task)
	}
	return nil
}

// Wait does nothing; the renderer is synchronous.
func (r *Renderer) Wait() error { return nil }

// OnPlanEmit announces how many stages each run will execute.
func (r *Renderer) OnPlanEmit(steps []string, _ map[string][]string, targets []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	arrow := r.output.String(style.Arrow).Foreground(r.output.Color(style.Hex(style.Accent)))
	_, _ = fmt.Fprintf(r.stderr, "%s Running %s: %d stage(s)\n", arrow, strings.Join(targets, ", "), len(steps))
}

// OnTaskStart prints a start line. Child spans are indented under their parent.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	depth := 0
	if parent, ok := r.tasks[parentID]; ok {
		depth = parent.depth + 1
	}
	r.tasks[spanID] = &taskState{name: name, depth: depth, start: startTime}

	_, _ = fmt.Fprintf(r.stderr, "%s%s Starting...\n", indent(depth), r.tagLocked(name))
}

// OnTaskLog buffers data and prints every complete line with the stage prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	task.buffer.Write(data)
	for {
		i := bytes.IndexByte(task.buffer.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := task.buffer.Next(i + 1)
		r.printLineLocked(task.name, line)
	}
}

// OnTaskComplete flushes the stage's partial line and prints its outcome.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}
	r.flushLocked(task)
	delete(r.tasks, spanID)

	d := endTime.Sub(task.start).Round(time.Millisecond)
	prefix := indent(task.depth) + r.tagLocked(task.name)
	if err != nil {
		mark := r.output.String(style.Cross).Foreground(r.output.Color(style.Hex(style.Red)))
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, mark, d, err)
		return
	}
	mark := r.output.String(style.Check).Foreground(r.output.Color(style.Hex(style.Green)))
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, mark, d)
}

// flushLocked must be called with r.mu held.
func (r *Renderer) flushLocked(task *taskState) {
	if task.buffer.Len() == 0 {
		return
	}
	r.printLineLocked(task.name, task.buffer.Bytes())
	task.buffer.Reset()
}

// printLineLocked must be called with r.mu held.
func (r *Renderer) printLineLocked(name string, line []byte) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", name, line)
}

// tagLocked colors "[name]" with a color derived from the name.
func (r *Renderer) tagLocked(name string) string {
	c := style.Tags[xxhash.Sum64String(name)%uint64(len(style.Tags))]
	return r.output.String("[" + name + "]").Foreground(r.output.Color(style.Hex(c))).String()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
