package services

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/vytor/conceptpulse/internal/deck"
	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/jobs"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
	"github.com/vytor/conceptpulse/internal/worker"
)

const exportPageSize = 500

// ImportResult reports a completed synchronous import.
type ImportResult struct {
	Deck     string  `json:"deck,omitempty"`
	Imported int     `json:"imported"`
	IDs      []int64 `json:"ids"`
}

// ImportTicket acknowledges an import queued for background processing.
type ImportTicket struct {
	JobID  string `json:"job_id"`
	Deck   string `json:"deck,omitempty"`
	Cards  int    `json:"cards"`
	Status string `json:"status"`
}

// DeckService handles deck import and export
type DeckService interface {
	Import(ctx context.Context, d *deck.Deck) (*ImportResult, error)
	Enqueue(ctx context.Context, d *deck.Deck) (*ImportTicket, error)
	Export(ctx context.Context, domain string) (*deck.Deck, error)
}

type deckService struct {
	cards repository.CardRepository
	queue jobs.JobQueue
}

// NewDeckService creates a new DeckService. queue may be nil when only
// synchronous imports are needed.
func NewDeckService(cards repository.CardRepository, queue jobs.JobQueue) DeckService {
	return &deckService{cards: cards, queue: queue}
}

func (s *deckService) Import(ctx context.Context, d *deck.Deck) (*ImportResult, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_service")

	if err := d.Validate(); err != nil {
		return nil, errors.NewValidationError("deck", err.Error())
	}

	ids, err := s.cards.InsertBatch(ctx, d.Models())
	if err != nil {
		log.Error("failed to import deck %q: %v", d.Name, err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("deck imported: name=%q, cards=%d", d.Name, len(ids))
	return &ImportResult{Deck: d.Name, Imported: len(ids), IDs: ids}, nil
}

func (s *deckService) Enqueue(ctx context.Context, d *deck.Deck) (*ImportTicket, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_service")

	if s.queue == nil {
		return nil, errors.NewUnavailableError("background imports are disabled", nil)
	}
	if err := d.Validate(); err != nil {
		return nil, errors.NewValidationError("deck", err.Error())
	}

	jobID := uuid.NewString()
	if err := s.queue.EnqueueDeckImport(jobID, d); err != nil {
		if stderrors.Is(err, worker.ErrQueueFull) {
			log.Warn("import queue full, rejecting deck %q", d.Name)
			return nil, errors.NewUnavailableError("import queue is full, retry later", err)
		}
		log.Error("failed to enqueue deck import: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("deck import queued: job_id=%s, name=%q, cards=%d", jobID, d.Name, len(d.Cards))
	return &ImportTicket{JobID: jobID, Deck: d.Name, Cards: len(d.Cards), Status: "queued"}, nil
}

func (s *deckService) Export(ctx context.Context, domain string) (*deck.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_service")

	var all []models.Card
	filter := models.CardFilter{Domain: domain, Limit: exportPageSize}
	for {
		page, err := s.cards.List(ctx, filter)
		if err != nil {
			log.Error("failed to list cards for export: %v", err)
			return nil, errors.NewInternalError(err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			break
		}
		filter.Offset += exportPageSize
	}

	name := "conceptpulse"
	if domain != "" {
		name = domain
	}
	log.Info("exporting %d cards: domain=%s", len(all), domain)
	return deck.FromModels(name, domain, all), nil
}
