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

	"github.com/fleetgate/fleetgate-core/internal/core/ports/driven"
	"github.com/fleetgate/fleetgate-core/internal/core/ports/driving"
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
	authFlow driving.AuthFlowService
	users    driving.UserService
	vehicles driving.VehicleService
	sessions driven.SessionCodec

	// Where the browser lands after a completed login.
	successURL string

	// Secure attribute on the oauth_state cookie.
	secureCookies bool

	// Infrastructure
	db   Pinger // PostgreSQL health check
	lock Pinger // lock backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// SuccessURL receives the session token after a completed login.
	SuccessURL string

	// SecureCookies marks the oauth_state cookie Secure. Off for local
	// plain-HTTP development, on everywhere else.
	SecureCookies bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:          "0.0.0.0",
		Port:          8080,
		Version:       "dev",
		SuccessURL:    "/",
		SecureCookies: true,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authFlow driving.AuthFlowService,
	users driving.UserService,
	vehicles driving.VehicleService,
	sessions driven.SessionCodec,
	db Pinger,
	lock Pinger, // can be nil
) *Server {
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		authFlow:      authFlow,
		users:         users,
		vehicles:      vehicles,
		sessions:      sessions,
		successURL:    cfg.SuccessURL,
		secureCookies: cfg.SecureCookies,
		db:            db,
		lock:          lock,
	}

	handler := NewRecoveryMiddleware().Handler(
		NewLoggingMiddleware().Handler(s.router))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	sessionMiddleware := NewSessionMiddleware(s.sessions)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Login flow endpoints (public, browser-driven)
	s.router.HandleFunc("GET /login", s.handleLogin)
	s.router.HandleFunc("GET /callback", s.handleCallback)

	// User endpoints (authenticated)
	s.router.Handle("GET /me",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// Vehicle endpoints (authenticated)
	s.router.Handle("GET /vehicles",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleListVehicles)))
	s.router.Handle("POST /vehicles/{id}/{command}",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleCommand)))
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

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
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
