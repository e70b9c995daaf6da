// Package web wires the HTTP API: routing, middleware, and server lifecycle.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/albumpress/albumpress/internal/config"
	"github.com/albumpress/albumpress/internal/export"
	"github.com/albumpress/albumpress/internal/store"
	"github.com/albumpress/albumpress/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
	store          store.AlbumStore
	exports        *export.Manager
}

// NewServer creates a new web server.
func NewServer(cfg *config.Config, albumStore store.AlbumStore, exports *export.Manager) *Server {
	r := chi.NewRouter()

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: middleware.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL),
		store:          albumStore,
		exports:        exports,
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(5 * time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // Downloads of large PDFs can be slow.
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logrus.WithField("addr", s.httpServer.Addr).Info("starting web server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down web server")

	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
