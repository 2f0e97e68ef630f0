package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)
	r.NotFound(handleNotFound)
	r.MethodNotAllowed(handleMethodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/cards", s.handleListCards)
		r.Post("/cards", s.handleCreateCard)
		r.Get("/cards/{id}", s.handleGetCard)
		r.Patch("/cards/{id}", s.handleUpdateCard)
		r.Get("/cards/{id}/history", s.handleCardHistory)
		r.Post("/cards/{id}/review", s.handleReviewCard)

		r.Get("/due", s.handleDue)
		r.Get("/review/next", s.handleNextReview)
		r.Get("/domains", s.handleDomains)
		r.Get("/stats", s.handleStats)

		r.Post("/decks/import", s.handleImportDeck)
		r.Get("/decks/export", s.handleExportDeck)
	})
	return r
}
