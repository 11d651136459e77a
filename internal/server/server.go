// Package server provides the HTTP REST API for the job aggregator.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-aggregator/internal/ingest"
	"github.com/jonathan/job-aggregator/internal/ops"
	"github.com/jonathan/job-aggregator/internal/types"
)

// Store is the read surface the handlers need.
type Store interface {
	Page(ctx context.Context, token string, limit int) ([]*types.JobPosting, string, error)
	Posting(ctx context.Context, id uuid.UUID) (*types.JobPosting, error)
	GetPostingWithDetail(ctx context.Context, id uuid.UUID) (*types.JobPosting, error)
	SearchPostings(ctx context.Context, query string, limit int) ([]*types.JobPosting, error)
	ListSummaries(ctx context.Context) ([]*types.CompanySummary, error)
	LoadAliases(ctx context.Context) (map[string]string, error)
}

// Ingester accepts raw scrape payloads.
type Ingester interface {
	Run(ctx context.Context, payload []byte) (*ingest.Report, error)
}

// Maintainer runs the admin maintenance operations.
type Maintainer interface {
	Recompute(ctx context.Context) (*ops.RecomputeReport, error)
	Backfill(ctx context.Context) (*ops.BackfillReport, error)
	Sweep(ctx context.Context) (*ops.SweepReport, error)
}

// Config holds server configuration.
type Config struct {
	Port          int
	WebhookSecret string
	JWTSecret     string
	JWTExpiration time.Duration
}

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	store      Store
	ingester   Ingester
	maintainer Maintainer
	cfg        Config
	jwt        *JWTService
}

// New creates a server instance over an already-connected store.
func New(cfg Config, store Store, ingester Ingester, maintainer Maintainer) *Server {
	s := &Server{
		store:      store,
		ingester:   ingester,
		maintainer: maintainer,
		cfg:        cfg,
	}
	if cfg.JWTSecret != "" {
		s.jwt = NewJWTService(cfg.JWTSecret, cfg.JWTExpiration)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(s.Routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Routes builds the request multiplexer. Exposed for handler tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("GET /companies", s.handleListCompanies)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.Handle("POST /webhooks/scrape", s.withWebhookSignature(http.HandlerFunc(s.handleScrapeWebhook)))

	mux.Handle("POST /admin/recompute", s.withAdminJWT(http.HandlerFunc(s.handleRecompute)))
	mux.Handle("POST /admin/backfill", s.withAdminJWT(http.HandlerFunc(s.handleBackfill)))
	mux.Handle("POST /admin/sweep", s.withAdminJWT(http.HandlerFunc(s.handleSweep)))

	return mux
}

// Start begins listening and blocks until an interrupt triggers graceful
// shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

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

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Signature")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
