package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"go-rhythm/debug"
	"go-rhythm/pattern"
	"go-rhythm/sequencer"
)

// LiveSource provides the running sequencer state. *sequencer.Manager is one.
type LiveSource interface {
	Snapshot() sequencer.Snapshot
}

// Config holds server configuration
type Config struct {
	Addr   string
	Tuning *pattern.Tuning // nil for the default
	// Quiet sends request lines to the debug log instead of stdout, for
	// when a terminal UI owns the screen
	Quiet bool
}

// Server is the HTTP interface: pattern previews always, the live
// snapshot when a LiveSource is attached
type Server struct {
	config Config
	router *chi.Mux
	live   LiveSource
}

// New creates a server. live may be nil.
func New(cfg Config, live LiveSource) *Server {
	if cfg.Tuning == nil {
		cfg.Tuning = pattern.DefaultTuning()
	}
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		live:   live,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	if s.config.Quiet {
		r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: debug.Printer("http"), NoColor: true}))
	} else {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/pattern", s.handlePattern)
	r.Get("/pattern.txt", s.handlePatternText)
	if s.live != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NoCache)
			r.Get("/live", s.handleLive)
		})
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		debug.Log("http", "listening on %s", s.config.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serve %s: %w", s.config.Addr, err)
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
