package server

import (
	"log"
	"net/http"
)

// handleRecompute rebuilds the company rollup table.
func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	report, err := s.maintainer.Recompute(r.Context())
	if err != nil {
		log.Printf("Error recomputing summaries: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "recompute failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleBackfill re-resolves locations and hints over the stored corpus.
func (s *Server) handleBackfill(w http.ResponseWriter, r *http.Request) {
	report, err := s.maintainer.Backfill(r.Context())
	if err != nil {
		log.Printf("Error backfilling postings: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "backfill failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleSweep purges finished and stale scrape queue entries.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	report, err := s.maintainer.Sweep(r.Context())
	if err != nil {
		log.Printf("Error sweeping queue: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}
