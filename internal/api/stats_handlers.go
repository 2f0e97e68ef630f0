package api

import "net/http"

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.Cards.Domains(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"domains": domains})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := r.URL.Query().Get("domain")

	overview, err := s.Stats.Overview(ctx, domain)
	if err != nil {
		handleError(w, r, err)
		return
	}
	perDomain, err := s.Stats.Domains(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"overview": overview,
		"domains":  perDomain,
	})
}
