package worker

import (
	"context"

	"github.com/vytor/conceptpulse/internal/deck"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
)

// CardInserter is the part of the card store an import job writes to.
type CardInserter interface {
	InsertBatch(ctx context.Context, cards []models.Card) ([]int64, error)
}

// ImportDeckJob inserts every card of a validated deck in one transaction.
type ImportDeckJob struct {
	Cards CardInserter
	Deck  *deck.Deck
	JobID string
}

func (j *ImportDeckJob) Name() string { return "import_deck" }

func (j *ImportDeckJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"job_id": j.JobID,
		"deck":   j.Deck.Name,
	})
	log.Info("starting background deck import: cards=%d", len(j.Deck.Cards))

	ids, err := j.Cards.InsertBatch(ctx, j.Deck.Models())
	if err != nil {
		log.Error("failed to insert deck cards: %v", err)
		return err
	}

	log.Info("deck import finished: inserted=%d", len(ids))
	return nil
}
