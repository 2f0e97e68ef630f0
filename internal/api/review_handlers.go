package api

import (
	"net/http"

	"github.com/vytor/conceptpulse/internal/errors"
)

type reviewRequest struct {
	Quality     *int    `json:"quality"`
	TimeSeconds float64 `json:"time_seconds"`
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Quality == nil {
		handleError(w, r, errors.NewValidationError("quality", "is required"))
		return
	}

	outcome, err := s.Reviews.Review(r.Context(), id, *req.Quality, req.TimeSeconds)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, outcome)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := intQuery(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}

	history, err := s.Reviews.History(r.Context(), id, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"card_id": id, "history": history})
}
