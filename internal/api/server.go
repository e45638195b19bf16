// Package api exposes the categorization engine over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/Veraticus/spice-categorizer/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config holds HTTP server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// TLS enables HTTPS when set.
	TLS *tls.Config
	// MaxBatch caps the number of transactions per batch request.
	MaxBatch int
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		MaxBatch:     10000,
	}
}

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
}

// NewServer creates a new API server. Health checks ping every dependency
// in checks.
func NewServer(cfg Config, eng *engine.Engine, version string, checks ...Pinger) *Server {
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultConfig().MaxBatch
	}

	handler := NewHandler(eng, version, cfg.MaxBatch, checks...)
	router := chi.NewRouter()

	router.Use(RecoverMiddleware)
	router.Use(TracingMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))

	router.Get("/health", handler.Health)

	router.Route("/v1", func(r chi.Router) {
		r.Post("/categorize", handler.Categorize)
		r.Post("/categorize/batch", handler.CategorizeBatch)
		r.Post("/corrections", handler.Correct)
		r.Post("/rules/refresh", handler.RefreshRules)
		r.Get("/merchants", handler.ListMerchants)
		r.Put("/merchants/{merchant}", handler.SetMerchant)
	})

	return &Server{
		router:  router,
		handler: handler,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  120 * time.Second,
			TLSConfig:    cfg.TLS,
		},
	}
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.server.TLSConfig != nil {
		return s.server.ListenAndServeTLS("", "")
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
