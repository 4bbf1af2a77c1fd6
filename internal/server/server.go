// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	cmd/curator builds:  sqlite.DB → Aggregator + Engine → CurationService
//	server.New gets:     CurationService (as handler.Curator) + the store
//
// The server never builds the service itself, so the CLI commands can share
// exactly the same composition without starting HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/news-curator/internal/handler"
	"github.com/sakif/news-curator/internal/metrics"
	"github.com/sakif/news-curator/internal/middleware"
)

// Config holds server configuration.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DBPath          string // only logged at startup
}

// Store is what the server needs from the database: a health probe, and a
// Close on shutdown.
type Store interface {
	Ping() error
	Close() error
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store once New returns. When the server shuts down it
// closes the store to flush the WAL and release the file lock.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	curator handler.Curator
	store   Store
}

// New creates a new Server with the given config.
func New(cfg Config, curator handler.Curator, store Store, logger *slog.Logger) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		curator: curator,
		store:   store,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                              → Store health
// GET    /metrics                              → Prometheus scrape endpoint
// GET    /api/articles/{category}              → Ingest + sample (?sample=N)
// GET    /api/articles/me/recommendations      → Ranked suggestions (?top=N)
// GET    /api/articles/me/favorites            → Caller's favorites
// POST   /api/articles/{id}/favorite           → Add favorite
// DELETE /api/articles/{id}/favorite           → Remove favorite
// GET    /api/categories/{parent}              → Recipe sub-categories
//
// Everything under /api needs the X-User-Email identity header.
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. Logger: logs each request and records request metrics
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/healthz", handler.HandleHealth(s.store))
	s.router.Handle("/metrics", metrics.Handler())

	articles := handler.NewArticleHandler(s.curator, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireUser)

		// The static "me" routes are registered next to "{category}". Chi
		// prefers static segments, so /articles/me/... never reaches the
		// category handler.
		r.Get("/articles/me/recommendations", articles.HandleRecommendations)
		r.Get("/articles/me/favorites", articles.HandleFavorites)
		r.Get("/articles/{category}", articles.HandleIngest)
		r.Post("/articles/{id}/favorite", articles.HandleFavorite)
		r.Delete("/articles/{id}/favorite", articles.HandleUnfavorite)
		r.Get("/categories/{parent}", articles.HandleCategories)
	})
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (ShutdownTimeout)
// 3. Close the store (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
