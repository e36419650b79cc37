package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	ingestionService driving.IngestionService
	queryService     driving.QueryService

	// Infrastructure
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)

	auth *AuthMiddleware
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// JWTSecret signs and verifies bearer tokens
	JWTSecret string

	// APIKeyHash is the bcrypt hash of the service API key; empty disables
	// API key auth
	APIKeyHash string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	ingestionService driving.IngestionService,
	queryService driving.QueryService,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:           http.NewServeMux(),
		version:          cfg.Version,
		ingestionService: ingestionService,
		queryService:     queryService,
		db:               db,
		redisClient:      redisClient,
		auth:             NewAuthMiddleware([]byte(cfg.JWTSecret), cfg.APIKeyHash),
	}

	logging := NewLoggingMiddleware()
	recovery := NewRecoveryMiddleware()

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      recovery.Handler(logging.Handler(s.router)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Document endpoints (authenticated)
	s.router.Handle("POST /api/v1/documents",
		s.auth.Authenticate(http.HandlerFunc(s.handleIngestDocument)))
	s.router.Handle("GET /api/v1/documents/{id}",
		s.auth.Authenticate(http.HandlerFunc(s.handleGetDocument)))
	s.router.Handle("DELETE /api/v1/documents/{id}",
		s.auth.Authenticate(http.HandlerFunc(s.handleDeleteDocument)))

	// Query endpoints (authenticated)
	s.router.Handle("POST /api/v1/query",
		s.auth.Authenticate(http.HandlerFunc(s.handleQuery)))
	s.router.Handle("POST /api/v1/query/batch",
		s.auth.Authenticate(http.HandlerFunc(s.handleBatchQuery)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
