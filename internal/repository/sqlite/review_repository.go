package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// History returns the newest reviews of a card first.
func (r *reviewRepository) History(ctx context.Context, cardID int64, limit int) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching review history: card_id=%d, limit=%d", cardID, limit)

	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, card_id, quality, difficulty_tag, success, ease_factor, interval_minutes, time_seconds, reviewed_at
FROM review_history
WHERE card_id = ?
ORDER BY reviewed_at DESC, id DESC
LIMIT ?
`, cardID, limit)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var history []models.ReviewHistory
	for rows.Next() {
		var (
			h          models.ReviewHistory
			reviewedAt string
		)
		if err := rows.Scan(&h.ID, &h.CardID, &h.Quality, &h.DifficultyTag, &h.Success, &h.EaseFactor, &h.IntervalMinutes, &h.TimeSeconds, &reviewedAt); err != nil {
			log.Error("failed to scan review history row: %v", err)
			return nil, err
		}
		if h.ReviewedAt, err = parseTS(reviewedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
