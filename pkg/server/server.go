// Package server exposes the layout pipeline as a JSON HTTP API for the
// browser editor.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/v1/example
//	POST   /api/v1/validate
//	POST   /api/v1/graph
//	POST   /api/v1/layout?direction=LR&grid=20
//	POST   /api/v1/analyze
//	POST   /api/v1/snap
//	POST   /api/v1/routes?direction=LR
//	GET    /api/v1/history
//	POST   /api/v1/history
//	GET    /api/v1/history/{id}
//	DELETE /api/v1/history/{id}
//
// Documents are posted as JSON or YAML request bodies. Failures are
// answered with a {"code", "message"} body and a status derived from the
// error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowlayout/pkg/config"
	"github.com/matzehuels/flowlayout/pkg/history"
	"github.com/matzehuels/flowlayout/pkg/layout"
	"github.com/matzehuels/flowlayout/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// Options configures a [Server]. Nil fields get working defaults.
type Options struct {
	Runner  *pipeline.Runner
	History history.Store
	Logger  *log.Logger

	// Layout holds the layout defaults; query parameters override them
	// per request.
	Layout pipeline.Options
	Align  layout.AlignOptions
	HTTP   config.Server
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	history history.Store
	logger  *log.Logger
	layout  pipeline.Options
	align   layout.AlignOptions
	cfg     config.Server
	router  chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.History == nil {
		opts.History = history.Discard()
	}
	if opts.Align == (layout.AlignOptions{}) {
		opts.Align = layout.DefaultAlignOptions()
	}
	if opts.HTTP.MaxBodyBytes <= 0 {
		opts.HTTP.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	opts.Layout.SetDefaults()

	s := &Server{
		runner:  opts.Runner,
		history: opts.History,
		logger:  opts.Logger,
		layout:  opts.Layout,
		align:   opts.Align,
		cfg:     opts.HTTP,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/example", s.handleExample)
		r.Post("/validate", s.handleValidate)
		r.Post("/graph", s.handleGraph)
		r.Post("/layout", s.handleLayout)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/snap", s.handleSnap)
		r.Post("/routes", s.handleRoutes)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Post("/", s.handleAddHistory)
			r.Get("/{id}", s.handleGetHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
		})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, notFound(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, methodNotAllowed(r))
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = config.DefaultServerAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout.Std(),
		WriteTimeout: s.cfg.WriteTimeout.Std(),
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
