package devtools

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/sprout/internal/archive"
	"github.com/vango-dev/sprout/internal/config"
	"github.com/vango-dev/sprout/internal/errors"
	"github.com/vango-dev/sprout/internal/scenario"
	"github.com/vango-dev/sprout/pkg/host/memhost"
	"github.com/vango-dev/sprout/pkg/scheduler"
	"github.com/vango-dev/sprout/pkg/telemetry"
)

// Config configures a Server.
type Config struct {
	// WebSocketPath is the route of the live stream.
	// Default: "/ws"
	WebSocketPath string

	// Buffer is the per-client stream buffer.
	// Default: 256
	Buffer int

	// Namespace prefixes metric names.
	// Default: "sprout"
	Namespace string

	// Registry collects the server's metrics. A fresh registry with Go
	// runtime collectors is used when nil.
	Registry *prometheus.Registry

	// Tracer, when set, records render and flush spans.
	Tracer *telemetry.Tracer

	// Store, when set, enables the /api/traces routes.
	Store archive.Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server replays one scenario and exposes it over HTTP.
type Server struct {
	sc     *scenario.Scenario
	cfg    Config
	logger *slog.Logger

	host     *memhost.Host
	loop     *scheduler.Loop
	registry *prometheus.Registry
	metrics  *telemetry.Metrics
	stream   *Stream
	router   chi.Router

	// player is only touched on the loop goroutine.
	player *scenario.Player

	unsubscribe func()
	cancel      context.CancelFunc
	started     atomic.Bool
}

// New creates a server for sc. Call Start before serving requests.
func New(sc *scenario.Scenario, cfg Config) *Server {
	if cfg.WebSocketPath == "" {
		cfg.WebSocketPath = config.DefaultWebSocketPath
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = config.DefaultBuffer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultNamespace
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
		cfg.Registry.MustRegister(collectors.NewGoCollector())
	}

	logger := cfg.Logger.With("component", "devtools")
	s := &Server{
		sc:       sc,
		cfg:      cfg,
		logger:   logger,
		host:     memhost.New(),
		loop:     scheduler.NewLoop(scheduler.WithLoopLogger(logger)),
		registry: cfg.Registry,
		stream:   NewStream(cfg.Buffer, logger),
	}
	s.metrics = telemetry.NewMetrics(
		telemetry.WithNamespace(cfg.Namespace),
		telemetry.WithRegistry(cfg.Registry),
	)
	s.unsubscribe = s.host.Subscribe(func(op memhost.Op) {
		s.metrics.ObserveHostOp(string(op.Kind))
		s.stream.PublishOp(op)
	})
	s.router = s.routes()
	return s
}

func (s *Server) newPlayer() *scenario.Player {
	schedHooks := s.metrics.SchedulerHooks()
	renderHooks := s.metrics.RendererHooks()
	if t := s.cfg.Tracer; t != nil {
		schedHooks = telemetry.MergeSchedulerHooks(schedHooks, t.SchedulerHooks())
		renderHooks = telemetry.MergeRendererHooks(renderHooks, t.RendererHooks())
	}
	return scenario.NewPlayer(s.sc,
		scenario.WithHost(s.host),
		scenario.WithLoop(s.loop),
		scenario.WithLogger(s.logger),
		scenario.WithSchedulerHooks(schedHooks),
		scenario.WithRendererHooks(renderHooks),
	)
}

// Start runs the loop in the background and mounts the scenario.
func (s *Server) Start(ctx context.Context) error {
	if s.started.Swap(true) {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.loop.Run(runCtx)

	return s.loop.Call(ctx, func() {
		s.player = s.newPlayer()
		s.player.Mount()
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stream returns the live stream hub.
func (s *Server) Stream() *Stream {
	return s.stream
}

// Host returns the host the scenario renders into.
func (s *Server) Host() *memhost.Host {
	return s.host
}

// ListenAndServe starts the server on addr and blocks until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devtools listening", "addr", addr, "scenario", s.sc.Name)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.New("E161").Wrap(err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	}
}

// Close stops the loop and disconnects stream clients.
func (s *Server) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.loop.Close()
	s.stream.Close()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get(s.cfg.WebSocketPath, s.stream.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/tree", s.handleTree)
		r.Get("/ops", s.handleOps)
		r.Post("/step", s.handleStep)
		r.Post("/reset", s.handleReset)
		r.Get("/trace", s.handleTrace)
		r.Route("/traces", func(r chi.Router) {
			r.Get("/", s.handleListTraces)
			r.Post("/", s.handleSaveTrace)
			r.Get("/{id}", s.handleGetTrace)
		})
	})
	return r
}

// requestLogger logs each request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
