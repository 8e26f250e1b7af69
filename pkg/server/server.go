// Package server serves the dogql GraphQL endpoint over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/getmockd/dogql/pkg/config"
	"github.com/getmockd/dogql/pkg/dogapi"
	"github.com/getmockd/dogql/pkg/graphql"
	"github.com/getmockd/dogql/pkg/httputil"
	"github.com/getmockd/dogql/pkg/logging"
	"github.com/getmockd/dogql/pkg/tracing"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// ErrAlreadyStarted is returned by Start on a running server.
var ErrAlreadyStarted = errors.New("server already started")

// Server is the dogql HTTP server.
type Server struct {
	cfg      config.ServerConfig
	executor graphql.Executable
	clients  *dogapi.Factory
	tracer   *tracing.Tracer
	log      *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	done       chan error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = logging.OrNop(l) }
}

// WithTracer traces every request.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// New creates a Server. clients builds the per-request upstream client
// that resolvers read from the context.
func New(cfg config.ServerConfig, executor graphql.Executable, clients *dogapi.Factory, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		executor: executor,
		clients:  clients,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router: the GraphQL endpoint at "/" and at the
// configured path, plus /health.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(RequestID)
	r.Use(Tracing(s.tracer))
	r.Use(RequestLogger(s.log))
	r.Use(chimw.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteOK(w, map[string]string{"status": "ok"})
	})

	gql := s.clients.Middleware(graphql.NewHandler(s.executor, graphql.WithHandlerLogger(s.log)))
	r.Handle("/", gql)
	if path := s.cfg.Path; path != "" && path != "/" {
		r.Handle(path, gql)
	}
	return r
}

// Start listens on the configured address and serves in the background.
// It returns once the listener is bound.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return ErrAlreadyStarted
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.done = make(chan error, 1)

	go func() {
		err := s.httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()

	s.log.Info("server ready", "url", s.url())
	return nil
}

// Done delivers the serve error, nil after a clean Stop, once the server
// stops. It is nil before Start.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// URL returns the base URL of the running server, e.g. http://localhost:4000/.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url()
}

func (s *Server) url() string {
	if s.listener == nil {
		return ""
	}
	host := s.cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	port := s.cfg.Port
	if tcp, ok := s.listener.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + "/"
}

// Stop shuts the server down, waiting for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}
