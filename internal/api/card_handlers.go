package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/services"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	page, err := s.Cards.List(r.Context(), models.CardFilter{
		Domain: q.Get("domain"),
		Search: q.Get("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var in services.CardInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.Create(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/cards/"+strconv.FormatInt(card.ID, 10))
	writeJSON(w, r, http.StatusCreated, card)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.Cards.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var update models.CardUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.Cards.Update(r.Context(), id, update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.Cards.Due(r.Context(), r.URL.Query().Get("domain"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cards": cards, "count": len(cards)})
}

func (s *Server) handleNextReview(w http.ResponseWriter, r *http.Request) {
	next, err := s.Cards.Next(r.Context(), r.URL.Query().Get("domain"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, next)
}
