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

	"github.com/installdeck/installdeck/internal/auth"
	"github.com/installdeck/installdeck/internal/catalog"
	"github.com/installdeck/installdeck/internal/config"
	"github.com/installdeck/installdeck/internal/server/middleware"
)

// HandlerSet contains all HTTP handlers
type HandlerSet struct {
	Generate http.HandlerFunc
	Health   http.HandlerFunc
	Metrics  http.HandlerFunc
	Whoami   http.HandlerFunc

	// Source handlers
	ListSources  http.HandlerFunc
	CreateSource http.HandlerFunc
	GetSource    http.HandlerFunc
	UpdateSource http.HandlerFunc
	DeleteSource http.HandlerFunc

	// Platform handlers
	ListPlatforms  http.HandlerFunc
	CreatePlatform http.HandlerFunc
	GetPlatform    http.HandlerFunc
	UpdatePlatform http.HandlerFunc
	DeletePlatform http.HandlerFunc

	// Application handlers
	ListApplications  http.HandlerFunc
	CreateApplication http.HandlerFunc
	GetApplication    http.HandlerFunc
	UpdateApplication http.HandlerFunc
	DeleteApplication http.HandlerFunc

	// Package handlers
	CreatePackage http.HandlerFunc
	DeletePackage http.HandlerFunc
}

// Server represents the HTTP server
type Server struct {
	config        *config.Config
	logger        *slog.Logger
	store         catalog.Store
	authenticator auth.Authenticator
	httpServer    *http.Server
	handlers      HandlerSet
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *slog.Logger, store catalog.Store, authenticator auth.Authenticator) *Server {
	return &Server{
		config:        cfg,
		logger:        logger,
		store:         store,
		authenticator: authenticator,
	}
}

// SetHandlers sets all handlers (called from the CLI layer to avoid an
// import cycle)
func (s *Server) SetHandlers(handlers HandlerSet) {
	s.handlers = handlers
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	router := s.setupRouter()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server",
		"host", s.config.Server.Host,
		"port", s.config.Server.Port,
		"catalog_uri", s.config.Catalog.URI,
		"auth_type", s.config.Auth.Type)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		s.logger.Info("Shutdown signal received", "signal", sig.String())
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server and closes the catalog store
func (s *Server) Shutdown() error {
	s.logger.Info("Initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown failed", "error", err)
		return err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Catalog close failed", "error", err)
		return err
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}

// setupRouter configures the HTTP router with middleware and routes.
// Reads and generation are public; writes require authentication.
func (s *Server) setupRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.Logging(s.logger))
	router.Use(middleware.NewRateLimiter(100)) // 100 req/min per IP
	router.Use(middleware.CORS())

	requireAuth := middleware.RequireAuth(s.authenticator)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handlers.Health)
		r.Get("/metrics", s.handlers.Metrics)

		r.With(requireAuth).Get("/whoami", s.handlers.Whoami)

		r.Post("/generate", s.handlers.Generate)
		r.Options("/generate", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		r.Route("/sources", func(r chi.Router) {
			r.Get("/", s.handlers.ListSources)
			r.With(requireAuth).Post("/", s.handlers.CreateSource)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", s.handlers.GetSource)
				r.With(requireAuth).Put("/", s.handlers.UpdateSource)
				r.With(requireAuth).Delete("/", s.handlers.DeleteSource)
			})
		})

		r.Route("/platforms", func(r chi.Router) {
			r.Get("/", s.handlers.ListPlatforms)
			r.With(requireAuth).Post("/", s.handlers.CreatePlatform)
			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", s.handlers.GetPlatform)
				r.With(requireAuth).Put("/", s.handlers.UpdatePlatform)
				r.With(requireAuth).Delete("/", s.handlers.DeletePlatform)
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Get("/", s.handlers.ListApplications)
			r.With(requireAuth).Post("/", s.handlers.CreateApplication)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handlers.GetApplication)
				r.With(requireAuth).Put("/", s.handlers.UpdateApplication)
				r.With(requireAuth).Delete("/", s.handlers.DeleteApplication)

				r.Route("/packages", func(r chi.Router) {
					r.With(requireAuth).Post("/", s.handlers.CreatePackage)
					r.With(requireAuth).Delete("/{source}", s.handlers.DeletePackage)
				})
			})
		})
	})

	return router
}
