package ssr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/render"
	"github.com/vango-dev/lattice/pkg/telemetry"
	"github.com/vango-dev/lattice/pkg/update"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the server.
type Config struct {
	// Addr is the listen address, e.g. "localhost:3000".
	Addr string

	// MountID is the id of the mount point wrapping page bodies.
	MountID string

	// Lang is the default page language.
	Lang string

	// StyleSheets are added to every page.
	StyleSheets []string

	// ClientScript is an optional script added to every page.
	ClientScript string

	// LivePath is the websocket path of live pages (default: "/live").
	LivePath string

	// MetricsPath serves Prometheus metrics when Metrics is set
	// (default: "/metrics").
	MetricsPath string

	// Metrics records request and tree activity. Nil disables metrics.
	Metrics *telemetry.Metrics

	// Gatherer is served on MetricsPath (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// Tracer is used for request spans (default: otel.Tracer("lattice/ssr")).
	Tracer trace.Tracer

	// Logger is the request logger (default: slog.Default()).
	Logger *slog.Logger

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration
}

// PageFunc builds a page on a dry tree.
type PageFunc func(r *http.Request, t *dom.Tree) (render.PageData, error)

// Server renders pages over HTTP.
type Server struct {
	config   Config
	router   chi.Router
	renderer *render.Renderer
	logger   *slog.Logger
	tracer   trace.Tracer
	lives    []*Live
}

// New creates a server with the default middleware stack.
func New(cfg Config) *Server {
	if cfg.LivePath == "" {
		cfg.LivePath = "/live"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("lattice/ssr")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: cfg.Logger.With("component", "ssr"),
		tracer: cfg.Tracer,
	}
	s.renderer = render.NewRenderer(render.RendererConfig{
		MountID:      cfg.MountID,
		Lang:         cfg.Lang,
		ClientScript: cfg.ClientScript,
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if cfg.Metrics != nil {
		s.router.Handle(cfg.MetricsPath, promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return s
}

// Router returns the chi router, for mounting extra routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Renderer returns the page renderer.
func (s *Server) Renderer() *render.Renderer {
	return s.renderer
}

// Handle registers a page rendered on a fresh dry tree per request.
func (s *Server) Handle(path string, fn PageFunc) {
	s.router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "ssr.Page",
			trace.WithAttributes(attribute.String("http.route", path)))
		defer span.End()

		opts := []dom.Option{dom.WithQueue(update.New()), dom.WithTracer(s.tracer)}
		if s.config.Metrics != nil {
			opts = append(opts, dom.WithObserver(s.config.Metrics))
		}
		tree := dom.NewTree(nil, opts...)

		page, err := fn(r, tree)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Error("page build failed", "route", path, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		page.StyleSheets = append(append([]string(nil), s.config.StyleSheets...), page.StyleSheets...)
		s.writePage(ctx, w, s.renderer, page)
	})
}

// HandleLive serves live at path and its websocket under LivePath+path.
// Every browser sees the same server-side tree.
func (s *Server) HandleLive(path string, live *Live, page render.PageData) {
	wsPath := s.livePath(path)
	renderer := render.NewRenderer(render.RendererConfig{
		MountID:      s.config.MountID,
		Lang:         s.config.Lang,
		ClientScript: s.config.ClientScript,
		LiveURL:      wsPath,
	})

	s.router.Handle(wsPath, live.Hub())
	s.router.Get(path, func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.Start(r.Context(), "ssr.LivePage",
			trace.WithAttributes(attribute.String("http.route", path)))
		defer span.End()

		p := page
		p.Body = nil
		p.StyleSheets = append(append([]string(nil), s.config.StyleSheets...), page.StyleSheets...)
		p.BodyHTML = live.Markup()
		s.writePage(ctx, w, renderer, p)
	})
	s.lives = append(s.lives, live)
}

func (s *Server) livePath(path string) string {
	if path == "/" {
		return s.config.LivePath
	}
	return s.config.LivePath + path
}

func (s *Server) writePage(ctx context.Context, w http.ResponseWriter, renderer *render.Renderer, page render.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sr := render.NewStreamingRendererWith(w, renderer)
	if err := sr.RenderPage(ctx, page); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

// requestLogger logs each request with slog and records it in metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		if s.config.Metrics != nil {
			s.config.Metrics.RecordRequest(route, status)
		}
		s.logger.Info("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	for _, live := range s.lives {
		if err := live.Close(); err != nil {
			s.logger.Warn("close live page", "error", err)
		}
	}
	return srv.Shutdown(shutdownCtx)
}
