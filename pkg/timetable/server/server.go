// Package server exposes read-only lookups over loaded timetable stores as
// a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ukaji3/timetable-go/pkg/timetable/branch"
	"github.com/ukaji3/timetable-go/pkg/timetable/nlq"
	"github.com/ukaji3/timetable-go/pkg/timetable/store"
)

// Config holds the server dependencies.
type Config struct {
	Branches branch.Config
	// Rooms is optional; without it room lookups return 404.
	Rooms branch.Rooms
	// Store configures how stores are opened. They are always opened
	// read-only.
	Store store.Options
	// Translator is optional; without it questions return 503.
	Translator nlq.Translator
	Logger     *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	router     *chi.Mux
	branches   branch.Config
	rooms      branch.Rooms
	storeOpts  store.Options
	translator nlq.Translator
	log        *slog.Logger
}

// New creates a server with its routes installed.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		router:     chi.NewRouter(),
		branches:   config.Branches,
		rooms:      config.Rooms,
		storeOpts:  config.Store.ReadOnlyOptions(),
		translator: config.Translator,
		log:        log,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/branches", s.handleBranches)
		r.Get("/rooms/{room}", s.handleRoom)

		r.Route("/branches/{branch}/{dataset}", func(r chi.Router) {
			r.Get("/columns", s.handleColumns)
			r.Get("/distinct/{column}", s.handleDistinct)
			r.Get("/rows", s.handleRows)
			r.Get("/schedule/{day}", s.handleSchedule)
			r.Post("/ask", s.handleAsk)
		})
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
