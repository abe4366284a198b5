// Package devserver serves the output tree with live reload.
package devserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	"go.trai.ch/sitepipe/internal/core/domain"
	"go.trai.ch/sitepipe/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DevServer = (*Server)(nil)

const readHeaderTimeout = 10 * time.Second

// Server implements ports.DevServer on net/http.
type Server struct {
	hub     *Hub
	metrics ports.Metrics
	open    func(url string) error

	mu     sync.Mutex
	srv    *http.Server
	url    string
	served chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithOpener replaces the browser launcher used by Open.
func WithOpener(fn func(url string) error) Option {
	return func(s *Server) {
		s.open = fn
	}
}

// WithHeartbeat sets the reload stream keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Server) {
		s.hub = NewHub(d)
	}
}

func openBrowser(url string) error {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return browser.OpenURL(url)
}

// NewServer returns a server that records reloads in metrics and exposes
// them on MetricsPath. metrics may be nil.
func NewServer(metrics ports.Metrics, opts ...Option) *Server {
	s := &Server{hub: NewHub(DefaultHeartbeat), metrics: metrics, open: openBrowser}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes for rootDir.
func (s *Server) Handler(rootDir string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(EventsPath, s.hub)
	mux.HandleFunc(ScriptPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = io.WriteString(w, clientScript)
	})
	if s.metrics != nil {
		mux.Handle(MetricsPath, s.metrics.Handler())
	}
	mux.Handle("/", noStore(injectReloadScript(http.FileServer(http.Dir(rootDir)))))
	return mux
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// Start binds addr and serves rootDir until Shutdown. It returns once the
// listener is bound, so URL is valid afterwards.
func (s *Server) Start(ctx context.Context, rootDir, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return domain.Annotate(domain.ErrDevServerStartFailed, "addr", addr, "reason", "already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return zerr.With(domain.Wrap(err, domain.ErrDevServerStartFailed), "addr", addr)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(rootDir),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.url = "http://" + ln.Addr().String()
	s.served = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = ln.Close()
		}
	}(s.srv, s.served)
	return nil
}

// Open launches a browser on the served URL.
func (s *Server) Open() error {
	url := s.URL()
	if url == "" {
		return domain.Annotate(domain.ErrDevServerStartFailed, "reason", "not started")
	}
	return s.open(url)
}

// URL returns the base URL of the bound listener, or "" before Start.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// NotifyReload pushes ev to every connected browser. It never blocks.
func (s *Server) NotifyReload(ev domain.ReloadEvent) {
	if s.metrics != nil {
		s.metrics.IncReload(ev.Kind)
	}
	s.hub.Broadcast(ev)
}

// Shutdown disconnects reload streams, then stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	s.mu.Lock()
	srv, served := s.srv, s.served
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	err := srv.Shutdown(ctx)
	select {
	case <-served:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}
