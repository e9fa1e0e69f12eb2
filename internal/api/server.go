// Package api serves the submission journal over HTTP: a read-only
// review surface for checking what was submitted, when, and under which
// accession. Submissions themselves only happen through the CLI.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/seqops/virsam/internal/journal"
)

// Server represents the HTTP review server
type Server struct {
	router  *mux.Router
	server  *http.Server
	journal *journal.DB
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	JournalPath string
	EnableCORS  bool
}

// NewServer creates a new review server instance
func NewServer(cfg *Config) (*Server, error) {
	jdb, err := journal.Initialize(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	s := &Server{
		router:  mux.NewRouter(),
		journal: jdb,
	}

	// Setup routes
	s.setupRoutes()

	// Setup middleware
	if cfg.EnableCORS {
		s.router.Use(corsMiddleware)
	}
	s.router.Use(loggingMiddleware)
	s.router.Use(jsonMiddleware)

	// Create HTTP server
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Journal endpoints. The latest route must come before the id route
	// or the router treats "latest" as an id.
	api.HandleFunc("/submissions", s.handleListSubmissions).Methods("GET")
	api.HandleFunc("/submissions/latest", s.handleLatestSubmission).Methods("GET")
	api.HandleFunc("/submissions/{id}", s.handleGetSubmission).Methods("GET")

	// Statistics endpoint
	api.HandleFunc("/stats", s.handleGetStats).Methods("GET")

	// Health check
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Root endpoint
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting review server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down review server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}

	if s.journal != nil {
		return s.journal.Close()
	}

	return nil
}

// Middleware functions

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.RequestURI, time.Since(start))
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Helper functions

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  status,
	})
}

// handleRoot returns API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "virsam review API",
		"version":     "1.0.0",
		"description": "Read-only view of the virsam submission journal",
		"endpoints": map[string]string{
			"submissions": "/api/v1/submissions",
			"stats":       "/api/v1/stats",
			"health":      "/api/v1/health",
		},
	}
	s.writeJSON(w, http.StatusOK, info)
}

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if err := s.journal.Ping(); err != nil {
		health["status"] = "unhealthy"
		health["journal"] = err.Error()
	} else {
		health["journal"] = "healthy"
	}

	status := http.StatusOK
	if health["status"] != "healthy" {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, health)
}
