package watch_test

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/sitepipe/internal/core/ports/mocks"
	"go.trai.ch/sitepipe/internal/engine/watch"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const root = "/project"

type harness struct {
	t        *testing.T
	coord    *watch.Coordinator
	runner   *mocks.MockPipelineRunner
	reloader *mocks.MockReloader
	logger   *mocks.MockLogger
	events   chan ports.WatchEvent
	done     chan struct{}
	err      error

	mu      sync.Mutex
	reloads []domain.ReloadEvent
}

func newHarness(t *testing.T, debounce time.Duration) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		t:        t,
		runner:   mocks.NewMockPipelineRunner(ctrl),
		reloader: mocks.NewMockReloader(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
		events:   make(chan ports.WatchEvent),
		done:     make(chan struct{}),
	}
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()

	reg, err := domain.StandardRegistry(domain.DefaultConfig(root))
	require.NoError(t, err)
	h.coord, err = watch.NewCoordinator(root, reg, h.runner, h.reloader, h.logger, debounce)
	require.NoError(t, err)
	return h
}

func (h *harness) expectReloads(n int) {
	h.reloader.EXPECT().NotifyReload(gomock.Any()).Do(func(ev domain.ReloadEvent) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.reloads = append(h.reloads, ev)
	}).Times(n)
}

func (h *harness) received() []domain.ReloadEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.ReloadEvent(nil), h.reloads...)
}

func (h *harness) seq() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range h.events {
			if !yield(ev) {
				return
			}
		}
	}
}

func (h *harness) start(ctx context.Context) {
	go func() {
		defer close(h.done)
		h.err = h.coord.Run(ctx, h.seq())
	}()
}

func (h *harness) write(rel string) {
	h.events <- ports.WatchEvent{Path: filepath.Join(root, filepath.FromSlash(rel)), Operation: ports.OpWrite}
}

// stop ends the event stream and waits for Run to return.
func (h *harness) stop() error {
	close(h.events)
	<-h.done
	return h.err
}

func (h *harness) state(rule string) watch.State {
	h.t.Helper()
	s, ok := h.coord.State(rule)
	require.True(h.t, ok)
	return s
}

// pipelineMatcher matches a task graph by name.
type pipelineMatcher struct {
	name string
}

func (m pipelineMatcher) Matches(x any) bool {
	tg, ok := x.(*domain.TaskGraph)
	return ok && tg.Name == m.name
}

func (m pipelineMatcher) String() string {
	return "pipeline is " + m.name
}

func pipelineNamed(name string) gomock.Matcher {
	return pipelineMatcher{name: name}
}

func sleepFor(d time.Duration) func(context.Context, *domain.TaskGraph) error {
	return func(context.Context, *domain.TaskGraph) error {
		time.Sleep(d)
		return nil
	}
}

func TestCoordinator_DoubleSaveRunsOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 100*time.Millisecond)
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("styles")).Return(nil).Times(1)
		h.expectReloads(1)

		h.start(t.Context())
		h.write("src/styles/main.scss")
		time.Sleep(50 * time.Millisecond)
		h.write("src/styles/main.scss")

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		require.NoError(t, h.stop())

		got := h.received()
		require.Len(t, got, 1)
		assert.Equal(t, "styles", got[0].Rule)
		assert.Equal(t, domain.ReloadCSS, got[0].Kind)
		assert.Equal(t, []string{"src/styles/main.scss"}, got[0].Paths)
	})
}

func TestCoordinator_ChangesWhileRunningCollapse(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 100*time.Millisecond)
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("styles")).DoAndReturn(sleepFor(time.Second)).Times(2)
		h.expectReloads(2)

		h.start(t.Context())
		h.write("src/styles/main.scss")
		synctest.Wait()
		assert.Equal(t, watch.Triggered, h.state("styles"))

		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, watch.Running, h.state("styles"))

		// Each of these outlives the debounce window while the first run is busy.
		for _, rel := range []string{"src/styles/_a.scss", "src/styles/_b.scss", "src/styles/_a.scss"} {
			h.write(rel)
			time.Sleep(200 * time.Millisecond)
		}
		assert.Equal(t, watch.Running, h.state("styles"))

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Equal(t, watch.Idle, h.state("styles"))
		require.NoError(t, h.stop())

		got := h.received()
		require.Len(t, got, 2)
		assert.Equal(t, []string{"src/styles/main.scss"}, got[0].Paths)
		assert.Equal(t, []string{"src/styles/_a.scss", "src/styles/_b.scss"}, got[1].Paths)
	})
}

func TestCoordinator_FailedRunIsLoggedWithoutReload(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 100*time.Millisecond)
		boom := errors.New("sass exited with 1")
		gomock.InOrder(
			h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("styles")).Return(boom),
			h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("styles")).Return(nil),
		)
		h.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
			assert.ErrorIs(t, err, boom)
		})
		h.expectReloads(1)

		h.start(t.Context())
		h.write("src/styles/main.scss")
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, h.received())
		assert.Equal(t, watch.Idle, h.state("styles"))

		h.write("src/styles/main.scss")
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		require.NoError(t, h.stop())
		assert.Len(t, h.received(), 1)
	})
}

func TestCoordinator_RulesRunIndependently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 100*time.Millisecond)
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("styles")).DoAndReturn(sleepFor(time.Second))
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("scripts")).DoAndReturn(sleepFor(time.Second))
		h.expectReloads(2)

		h.start(t.Context())
		h.write("src/styles/main.scss")
		h.write("src/scripts/app.js")

		time.Sleep(1150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, h.received(), 2)
		require.NoError(t, h.stop())
	})
}

func TestCoordinator_IgnoresUnrelatedPaths(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 100*time.Millisecond)

		h.start(t.Context())
		h.events <- ports.WatchEvent{Path: "/elsewhere/src/styles/main.scss", Operation: ports.OpWrite}
		h.events <- ports.WatchEvent{Path: root, Operation: ports.OpWrite}
		h.write("README.md")
		h.write("src/imgs/icons/close.png")

		time.Sleep(time.Second)
		synctest.Wait()
		require.NoError(t, h.stop())
		assert.Equal(t, watch.Idle, h.state("images"))
	})
}

func TestCoordinator_ZeroDebounceStillSerializes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 0)
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("scripts")).DoAndReturn(sleepFor(time.Second)).Times(2)
		h.expectReloads(2)

		h.start(t.Context())
		h.write("src/scripts/app.js")
		time.Sleep(time.Millisecond)
		assert.Equal(t, watch.Running, h.state("scripts"))

		h.write("src/scripts/app.js")
		time.Sleep(time.Millisecond)
		h.write("src/scripts/vendor.js")

		time.Sleep(3 * time.Second)
		synctest.Wait()
		require.NoError(t, h.stop())
		assert.Len(t, h.received(), 2)
	})
}

func TestCoordinator_StreamEndFlushesPendingChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, time.Second)
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("templates")).Return(nil)
		h.expectReloads(1)

		h.start(t.Context())
		h.write("src/twig.json")
		require.NoError(t, h.stop())

		got := h.received()
		require.Len(t, got, 1)
		assert.Equal(t, "templates", got[0].Rule)
		assert.Equal(t, domain.ReloadFull, got[0].Kind)
	})
}

func TestCoordinator_CancelWaitsForInflightRuns(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t, 100*time.Millisecond)
		finished := false
		h.runner.EXPECT().Run(gomock.Any(), pipelineNamed("fonts")).DoAndReturn(
			func(ctx context.Context, _ *domain.TaskGraph) error {
				<-ctx.Done()
				time.Sleep(time.Second)
				finished = true
				return ctx.Err()
			},
		)

		ctx, cancel := context.WithCancel(t.Context())
		h.start(ctx)
		h.write("src/fonts/inter.woff2")
		time.Sleep(200 * time.Millisecond)

		cancel()
		err := h.stop()
		require.ErrorIs(t, err, context.Canceled)
		assert.True(t, finished)
		assert.Empty(t, h.received())
	})
}

func TestCoordinator_StateUnknownRule(t *testing.T) {
	h := newHarness(t, time.Second)
	_, ok := h.coord.State("nope")
	assert.False(t, ok)
	assert.Equal(t, "idle", watch.Idle.String())
	assert.Equal(t, "running", watch.Running.String())
}
