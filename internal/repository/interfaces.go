package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/conceptpulse/internal/models"
)

var (
	// ErrNotFound is returned when a card id does not exist.
	ErrNotFound = errors.New("card not found")
	// ErrConflict is returned when a card changed since it was loaded.
	ErrConflict = errors.New("card version conflict")
)

// CardRepository is the card store: content, scheduling state and the due queue.
type CardRepository interface {
	// Get returns (nil, nil) when the card does not exist.
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Count(ctx context.Context, filter models.CardFilter) (int, error)
	Insert(ctx context.Context, card models.Card) (int64, error)
	InsertBatch(ctx context.Context, cards []models.Card) ([]int64, error)
	UpdateContent(ctx context.Context, id int64, update models.CardUpdate, at time.Time) error
	// Due lists cards due at now: never-scheduled cards first by creation,
	// then by next review ascending. An empty domain matches every card.
	Due(ctx context.Context, now time.Time, domain string, limit int) ([]models.Card, error)
	CountDue(ctx context.Context, now time.Time, domain string) (int, error)
	Domains(ctx context.Context) ([]string, error)
	// ApplyReview persists a scheduler outcome and its history row atomically.
	// It fails with ErrConflict when the stored version differs from rec.ExpectedVersion.
	ApplyReview(ctx context.Context, rec models.ReviewRecord) error
}

// ReviewRepository reads the review log written by CardRepository.ApplyReview.
type ReviewRepository interface {
	History(ctx context.Context, cardID int64, limit int) ([]models.ReviewHistory, error)
}

// StatsRepository aggregates scheduling data for reporting.
type StatsRepository interface {
	DeckStats(ctx context.Context, now time.Time, domain string) (*models.DeckStats, error)
	DomainStats(ctx context.Context, now time.Time) ([]models.DomainStat, error)
	TagCounts(ctx context.Context, domain string) ([]models.TagCount, error)
}
