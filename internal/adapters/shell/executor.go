// Package shell runs external tools such as the style compiler.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
// Commands run inside a PTY when the platform supports one so compilers keep
// their colored diagnostics; otherwise plain pipes are used.
type Executor struct {
	usePTY bool
}

// NewExecutor creates an Executor that prefers a PTY.
func NewExecutor() *Executor {
	return &Executor{usePTY: true}
}

// NewPipeExecutor creates an Executor that never allocates a PTY.
func NewPipeExecutor() *Executor {
	return &Executor{}
}

// Execute runs cmd and waits for it to complete.
func (e *Executor) Execute(ctx context.Context, cmd ports.Command, stdout, stderr io.Writer) error {
	if len(cmd.Argv) == 0 {
		return zerr.New("empty command")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	name := cmd.Argv[0]
	env := resolveEnvironment(os.Environ(), cmd.Env)

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	c := exec.CommandContext(ctx, executable, cmd.Argv[1:]...) //nolint:gosec // compiler comes from user config
	c.Args[0] = name
	c.Dir = cmd.Dir
	c.Env = env

	if err := e.run(c, stdout, stderr); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "command", name), "exit_code", exitCode)
	}
	return nil
}

func (e *Executor) run(c *exec.Cmd, stdout, stderr io.Writer) error {
	if e.usePTY {
		ptmx, err := pty.Start(c)
		if err == nil {
			done := make(chan struct{})
			go func() {
				defer close(done)
				// A PTY merges both streams.
				_, _ = io.Copy(stdout, ptmx)
			}()
			waitErr := c.Wait()
			_ = ptmx.Close()
			<-done
			return waitErr
		}
		if !errors.Is(err, pty.ErrUnsupported) {
			return zerr.Wrap(err, "failed to start pty")
		}
	}

	c.Stdout = stdout
	c.Stderr = stderr
	return c.Run()
}

// allowListedEnvVars are the host variables a child process inherits.
var allowListedEnvVars = []string{"HOME", "LANG", "PATH", "TERM", "TMPDIR", "USER"}

// resolveEnvironment keeps allow-listed host variables and applies extra on top.
// A PATH in extra is prepended to the host PATH.
func resolveEnvironment(host, extra []string) []string {
	envMap := make(map[string]string)
	for _, entry := range host {
		if k, v, ok := strings.Cut(entry, "="); ok && slices.Contains(allowListedEnvVars, k) {
			envMap[k] = v
		}
	}
	for _, entry := range extra {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" && envMap["PATH"] != "" {
			v = v + string(os.PathListSeparator) + envMap["PATH"]
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches the PATH of env rather than the host PATH.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func isExecutable(file string) bool {
	d, err := os.Stat(file)
	if err != nil {
		return false
	}
	m := d.Mode()
	return !m.IsDir() && m&0o111 != 0
}
