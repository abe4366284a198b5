package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/cmd/sitepipe/commands"
	"go.trai.ch/sitepipe/internal/app"
	"go.trai.ch/sitepipe/internal/build"
	"go.trai.ch/sitepipe/internal/core/domain"
)

// call records one Application method invocation.
type call struct {
	method string
	names  []string
	opts   app.Options
	dev    app.DevOptions
}

type mockApp struct {
	calls []call
	err   error
}

func (m *mockApp) record(c call) error {
	m.calls = append(m.calls, c)
	return m.err
}

func (m *mockApp) Run(_ context.Context, names []string, opts app.Options) error {
	return m.record(call{method: "run", names: names, opts: opts})
}

func (m *mockApp) Build(_ context.Context, opts app.Options) error {
	return m.record(call{method: "build", opts: opts})
}

func (m *mockApp) Lint(_ context.Context, opts app.Options) error {
	return m.record(call{method: "lint", opts: opts})
}

func (m *mockApp) PostCSS(_ context.Context, opts app.Options) error {
	return m.record(call{method: "postcss", opts: opts})
}

func (m *mockApp) MinifyScripts(_ context.Context, opts app.Options) error {
	return m.record(call{method: "minify-scripts", opts: opts})
}

func (m *mockApp) Dev(_ context.Context, opts app.Options, dev app.DevOptions) error {
	return m.record(call{method: "dev", opts: opts, dev: dev})
}

func (m *mockApp) Clean(_ context.Context, opts app.Options) error {
	return m.record(call{method: "clean", opts: opts})
}

func (m *mockApp) List(w io.Writer, opts app.Options) error {
	_, _ = io.WriteString(w, "Pipelines:\n")
	return m.record(call{method: "list", opts: opts})
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_EntryPoints(t *testing.T) {
	tests := []struct {
		args   []string
		method string
	}{
		{args: []string{"build"}, method: "build"},
		{args: []string{"lint"}, method: "lint"},
		{args: []string{"postcss"}, method: "postcss"},
		{args: []string{"minify-scripts"}, method: "minify-scripts"},
		{args: []string{"clean"}, method: "clean"},
		{args: []string{"dev"}, method: "dev"},
		{args: []string{}, method: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m := &mockApp{}
			_, err := execute(t, m, tt.args...)
			require.NoError(t, err)
			require.Len(t, m.calls, 1)
			assert.Equal(t, tt.method, m.calls[0].method)
		})
	}
}

func TestCommands_GlobalFlags(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "build", "--config", "site.yaml", "--root", "web", "--ci", "--json")
	require.NoError(t, err)

	require.Len(t, m.calls, 1)
	assert.Equal(t, app.Options{ConfigPath: "site.yaml", Root: "web", CI: true, JSON: true}, m.calls[0].opts)
}

func TestCommands_Dev(t *testing.T) {
	t.Run("unset flags keep configuration", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "dev")
		require.NoError(t, err)

		dev := m.calls[0].dev
		assert.Nil(t, dev.Host)
		assert.Nil(t, dev.Port)
		assert.Nil(t, dev.Debounce)
		assert.False(t, dev.Open)
	})

	t.Run("given flags override", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "dev", "--host", "0.0.0.0", "-p", "8080", "--open", "--debounce", "250ms")
		require.NoError(t, err)

		dev := m.calls[0].dev
		require.NotNil(t, dev.Host)
		require.NotNil(t, dev.Port)
		require.NotNil(t, dev.Debounce)
		assert.Equal(t, "0.0.0.0", *dev.Host)
		assert.Equal(t, 8080, *dev.Port)
		assert.Equal(t, 250*time.Millisecond, *dev.Debounce)
		assert.True(t, dev.Open)
	})

	t.Run("root command accepts dev flags", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "--port", "4000")
		require.NoError(t, err)

		require.NotNil(t, m.calls[0].dev.Port)
		assert.Equal(t, 4000, *m.calls[0].dev.Port)
	})
}

func TestCommands_Run(t *testing.T) {
	t.Run("passes pipeline names in order", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "run", "styles", domain.PipelinePostCSS)
		require.NoError(t, err)
		assert.Equal(t, []string{"styles", "postcss"}, m.calls[0].names)
	})

	t.Run("shows usage when no pipelines provided", func(t *testing.T) {
		m := &mockApp{}
		out, err := execute(t, m, "run")
		require.NoError(t, err)
		assert.Empty(t, m.calls)
		assert.Contains(t, out, "Usage:")
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		m := &mockApp{err: errors.New("simulated error")}
		_, err := execute(t, m, "run", "styles")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_List(t *testing.T) {
	m := &mockApp{}
	out, err := execute(t, m, "list")
	require.NoError(t, err)
	assert.Equal(t, "Pipelines:\n", out)
}

func TestCommands_RejectsUnknownArguments(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "deploy")
	require.Error(t, err)
	assert.Empty(t, m.calls)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sitepipe version "+build.Version)
}
