package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/vytor/conceptpulse/internal/deck"
	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/logger"
)

const defaultMaxDeckBytes = 4 << 20

// handleImportDeck accepts a YAML or JSON deck. Imports run in the background
// unless sync=true is passed.
func (s *Server) handleImportDeck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	format := deck.FormatFromContentType(r.Header.Get("Content-Type"))
	if raw := q.Get("format"); raw != "" {
		f, err := deck.ParseFormat(raw)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError(err.Error()))
			return
		}
		format = f
	}

	limit := s.MaxDeckBytes
	if limit <= 0 {
		limit = defaultMaxDeckBytes
	}
	d, err := deck.Read(http.MaxBytesReader(w, r.Body, limit+1), format, limit)
	if err != nil {
		handleError(w, r, errors.NewValidationError("deck", err.Error()))
		return
	}
	logger.FromContext(ctx).Debug("deck decoded: name=%q, cards=%d, format=%s", d.Name, len(d.Cards), format)

	if sync, _ := strconv.ParseBool(q.Get("sync")); sync {
		res, err := s.Decks.Import(ctx, d)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, res)
		return
	}

	ticket, err := s.Decks.Enqueue(ctx, d)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, ticket)
}

func (s *Server) handleExportDeck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := deck.FormatYAML
	if raw := q.Get("format"); raw != "" {
		f, err := deck.ParseFormat(raw)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError(err.Error()))
			return
		}
		format = f
	}

	d, err := s.Decks.Export(r.Context(), q.Get("domain"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	data, err := deck.Marshal(d, format)
	if err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name + format.Ext()}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContext(r.Context()).Error("failed to write export: %v", err)
	}
}
