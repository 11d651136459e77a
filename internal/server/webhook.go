package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log"
	"net/http"
	"strings"
)

// maxPayloadBytes caps inbound webhook payloads at 10 MiB.
const maxPayloadBytes = 10 << 20

// withWebhookSignature verifies the HMAC-SHA256 signature on inbound scrape
// payloads. The scraper sends X-Signature: sha256=<hex digest of body>.
// Comparison is constant time. An empty configured secret disables the
// check.
func (s *Server) withWebhookSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes+1))
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if len(body) > maxPayloadBytes {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}

		if s.cfg.WebhookSecret != "" {
			signature := strings.TrimPrefix(r.Header.Get("X-Signature"), "sha256=")
			if !validSignature(s.cfg.WebhookSecret, body, signature) {
				s.errorResponse(w, http.StatusUnauthorized, "invalid signature")
				return
			}
		}

		r = r.WithContext(withPayload(r.Context(), body))
		next.ServeHTTP(w, r)
	})
}

func validSignature(secret string, body []byte, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), provided)
}

// handleScrapeWebhook accepts a scrape payload and runs the intake pipeline
// on it synchronously.
func (s *Server) handleScrapeWebhook(w http.ResponseWriter, r *http.Request) {
	body := payloadFrom(r.Context())
	if len(body) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "empty payload")
		return
	}

	report, err := s.ingester.Run(r.Context(), body)
	if err != nil {
		log.Printf("Error ingesting payload: %v", err)
		s.errorResponse(w, http.StatusBadRequest, "failed to ingest payload")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"received": report.Received,
		"stored":   report.Stored,
		"skipped":  report.Skipped,
		"enqueued": report.Enqueued,
		"errors":   len(report.Errors),
	})
}
