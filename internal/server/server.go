// HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/plumenote/plume/internal/api"
	"github.com/plumenote/plume/internal/domain/suggest"
	appconfig "github.com/plumenote/plume/internal/infra/config"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration. WriteTimeout is
// generous because the suggestion SSE stream holds its response open.
func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server, the database, and the suggestion manager.
type Server struct {
	config      Config
	db          *sql.DB
	suggestions *suggest.Manager
	http        *http.Server
}

// NewServer creates the HTTP server with routing wired to db and cfg.
func NewServer(db *sql.DB, config Config, appCfg appconfig.Config) *Server {
	router, manager := api.NewRouter(db, appCfg)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:      config,
		db:          db,
		suggestions: manager,
		http:        httpServer,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	fmt.Printf("Starting HTTP server on %s\n", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server: drain HTTP, close the suggestion
// coordinators (in-flight results are discarded), then close the database.
func (s *Server) Shutdown(ctx context.Context) error {
	fmt.Println("Shutting down server...")

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.suggestions.Close()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("database close error: %w", err)
	}

	fmt.Println("Server shutdown complete")
	return nil
}
