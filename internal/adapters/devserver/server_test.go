package devserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sitepipe/internal/adapters/devserver"
	"go.trai.ch/sitepipe/internal/adapters/metrics"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func site(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":      "<!DOCTYPE html><html><body><p>home</p></body></html>",
		"styles/main.css": "a{color:red}",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	return root
}

func startServer(t *testing.T, s *devserver.Server, root string) {
	t.Helper()
	require.NoError(t, s.Start(t.Context(), root, "127.0.0.1:0"))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, s.Shutdown(ctx))
	})
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_ServesOutputTree(t *testing.T) {
	s := devserver.NewServer(nil)
	startServer(t, s, site(t))
	require.True(t, strings.HasPrefix(s.URL(), "http://127.0.0.1:"))

	resp, body := get(t, s.URL()+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Equal(t, `<!DOCTYPE html><html><body><p>home</p><script src="/__sitepipe/livereload.js"></script></body></html>`, body)

	resp, body = get(t, s.URL()+"/styles/main.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a{color:red}", body)

	resp, body = get(t, s.URL()+devserver.ScriptPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, devserver.EventsPath)

	resp, _ = get(t, s.URL()+"/missing.html")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_NotifyReloadStreamsAndCounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockMetrics(ctrl)
	m.EXPECT().Handler().Return(http.NotFoundHandler()).AnyTimes()
	m.EXPECT().IncReload(domain.ReloadCSS)

	s := devserver.NewServer(m)
	startServer(t, s, site(t))

	r, closeStream := stream(t, s.URL()+devserver.EventsPath)
	defer closeStream()

	// The hub registers the client before writing ": connected".
	s.NotifyReload(domain.ReloadEvent{Rule: "styles", Kind: domain.ReloadCSS, At: time.Now()})

	event, data := nextData(t, r)
	assert.Equal(t, "reload", event)
	assert.JSONEq(t, `{"rule":"styles","kind":"css"}`, data)
}

func TestServer_NotifyReloadWithoutClientsDoesNotBlock(t *testing.T) {
	s := devserver.NewServer(nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 100 {
			s.NotifyReload(domain.ReloadEvent{Kind: domain.ReloadFull})
		}
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("NotifyReload blocked")
	}
}

func TestServer_ShutdownEndsReloadStreams(t *testing.T) {
	s := devserver.NewServer(nil)
	require.NoError(t, s.Start(t.Context(), site(t), "127.0.0.1:0"))

	r, closeStream := stream(t, s.URL()+devserver.EventsPath)
	defer closeStream()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	_, err := r.ReadString('\n')
	require.Error(t, err)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := devserver.NewServer(metrics.NewPrometheusRecorder(nil))
	startServer(t, s, site(t))

	s.NotifyReload(domain.ReloadEvent{Kind: domain.ReloadFull})

	resp, body := get(t, s.URL()+devserver.MetricsPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `sitepipe_reloads_total{kind="full"} 1`)
}

func TestServer_StartErrors(t *testing.T) {
	s := devserver.NewServer(nil)
	startServer(t, s, site(t))

	err := s.Start(t.Context(), site(t), "127.0.0.1:0")
	require.ErrorIs(t, err, domain.ErrDevServerStartFailed)

	busy := strings.TrimPrefix(s.URL(), "http://")
	err = devserver.NewServer(nil).Start(t.Context(), site(t), busy)
	require.ErrorIs(t, err, domain.ErrDevServerStartFailed)
}

func TestServer_Open(t *testing.T) {
	var opened string
	s := devserver.NewServer(nil, devserver.WithOpener(func(url string) error {
		opened = url
		return nil
	}))
	require.ErrorIs(t, s.Open(), domain.ErrDevServerStartFailed)

	startServer(t, s, site(t))
	require.NoError(t, s.Open())
	assert.Equal(t, s.URL(), opened)
}

func TestInjectReloadScript(t *testing.T) {
	big := "<html><body>" + strings.Repeat("x", 600*1024) + "</body></html>"
	tests := []struct {
		name        string
		path        string
		contentType string
		status      int
		body        string
		want        string
	}{
		{
			name: "before closing body",
			path: "/about.html",
			body: "<body><p>x</p></body>",
			want: `<body><p>x</p><script src="/__sitepipe/livereload.js"></script></body>`,
		},
		{
			name: "appended without body tag",
			path: "/",
			body: "<p>fragment</p>",
			want: `<p>fragment</p><script src="/__sitepipe/livereload.js"></script>`,
		},
		{
			name: "non html path",
			path: "/scripts/app.js",
			body: "</body>",
			want: "</body>",
		},
		{
			name:        "non html content type",
			path:        "/feed/",
			contentType: "application/xml",
			body:        "<rss></rss>",
			want:        "<rss></rss>",
		},
		{
			name:   "error status",
			path:   "/gone.html",
			status: http.StatusNotFound,
			body:   "<body>404</body>",
			want:   "<body>404</body>",
		},
		{
			name: "oversized page",
			path: "/big.html",
			body: big,
			want: big,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := devserver.InjectReloadScript(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				_, _ = io.WriteString(w, tt.body)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			assert.Equal(t, want, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}
