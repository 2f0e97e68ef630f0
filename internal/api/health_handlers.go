package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/logger"
)

// handleHealth is the liveness probe; it only proves the process serves HTTP.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns 200 when the database answers a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.DB == nil {
		writeProblem(w, r, errors.NewUnavailableError("database not configured", nil))
		return
	}
	if err := s.DB.PingContext(ctx); err != nil {
		logger.FromContext(ctx).Warn("readiness check failed - database: %v", err)
		writeProblem(w, r, errors.NewUnavailableError("database unavailable", err))
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
