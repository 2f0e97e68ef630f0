package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/flashcard"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
)

// ReviewOutcome is what the caller learns after recording a review.
type ReviewOutcome struct {
	CardID     int64                  `json:"card_id"`
	Result     flashcard.ReviewResult `json:"result"`
	ReviewedAt time.Time              `json:"reviewed_at"`
	NextReview time.Time              `json:"next_review"`
	NextIn     string                 `json:"next_in"`
}

// ReviewService records reviews and exposes review history
type ReviewService interface {
	Review(ctx context.Context, cardID int64, quality int, timeSeconds float64) (*ReviewOutcome, error)
	History(ctx context.Context, cardID int64, limit int) ([]models.ReviewHistory, error)
}

type reviewService struct {
	cards   repository.CardRepository
	reviews repository.ReviewRepository
	now     func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(cards repository.CardRepository, reviews repository.ReviewRepository, opts ...Option) ReviewService {
	o := applyOptions(opts)
	return &reviewService{cards: cards, reviews: reviews, now: o.now}
}

func (s *reviewService) Review(ctx context.Context, cardID int64, quality int, timeSeconds float64) (*ReviewOutcome, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service").WithField("card_id", cardID)
	log.Debug("reviewing card: quality=%d", quality)

	q, err := flashcard.ParseQuality(quality)
	if err != nil {
		return nil, errors.NewValidationError("quality", "must be between 0 and 3")
	}
	if timeSeconds < 0 {
		return nil, errors.NewValidationError("time_seconds", "must not be negative")
	}

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		log.Error("failed to load card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}

	res, err := flashcard.ScheduleReview(card.State(), q)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	reviewedAt := s.now().UTC().Truncate(time.Second)
	err = s.cards.ApplyReview(ctx, models.ReviewRecord{
		CardID:          cardID,
		ExpectedVersion: card.Version,
		Result:          res,
		ReviewedAt:      reviewedAt,
		TimeSeconds:     timeSeconds,
	})
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return nil, errors.NewNotFoundError("card", cardID)
	case stderrors.Is(err, repository.ErrConflict):
		return nil, errors.NewConflictError("card", cardID, err)
	case err != nil:
		log.Error("failed to apply review: %v", err)
		return nil, errors.NewInternalError(err)
	}

	interval := time.Duration(res.IntervalMinutes) * time.Minute
	log.Info("review applied: tag=%s, interval=%dm, ease=%.2f, repetitions=%d",
		res.DifficultyTag, res.IntervalMinutes, res.EaseFactor, res.Repetitions)

	return &ReviewOutcome{
		CardID:     cardID,
		Result:     res,
		ReviewedAt: reviewedAt,
		NextReview: res.NextReview(reviewedAt),
		NextIn:     flashcard.FormatInterval(interval),
	}, nil
}

func (s *reviewService) History(ctx context.Context, cardID int64, limit int) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		log.Error("failed to load card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}

	history, err := s.reviews.History(ctx, cardID, limit)
	if err != nil {
		log.Error("failed to load review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if history == nil {
		history = []models.ReviewHistory{}
	}
	return history, nil
}
