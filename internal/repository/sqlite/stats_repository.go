package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) DeckStats(ctx context.Context, now time.Time, domain string) (*models.DeckStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching deck stats: domain=%s", domain)

	query := sqlBuilder.Select("COUNT(*)").
		Column(squirrel.Expr("COALESCE(SUM(CASE WHEN next_review IS NULL OR next_review <= ? THEN 1 ELSE 0 END), 0)", formatTS(now))).
		Columns(
			"COALESCE(SUM(CASE WHEN total_reviews = 0 THEN 1 ELSE 0 END), 0)",
			"COALESCE(SUM(total_reviews), 0)",
			"COALESCE(SUM(successful_reviews), 0)",
			"COALESCE(AVG(ease_factor), 0)",
			"COALESCE(AVG(interval_minutes), 0)",
		).
		From("cards")
	if domain != "" {
		query = query.Where(squirrel.Eq{"domain": domain})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	stat := models.DeckStats{Domain: domain}
	err = r.db.QueryRowContext(ctx, stmt, args...).Scan(
		&stat.TotalCards,
		&stat.DueCards,
		&stat.NewCards,
		&stat.TotalReviews,
		&stat.SuccessfulReviews,
		&stat.AvgEaseFactor,
		&stat.AvgIntervalMinutes,
	)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, err
	}
	if stat.TotalReviews > 0 {
		stat.SuccessRate = float64(stat.SuccessfulReviews) / float64(stat.TotalReviews)
	}
	return &stat, nil
}

func (r *statsRepository) DomainStats(ctx context.Context, now time.Time) ([]models.DomainStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching domain stats")

	rows, err := r.db.QueryContext(ctx, `
SELECT
    domain,
    COUNT(*) AS total_cards,
    SUM(CASE WHEN next_review IS NULL OR next_review <= ? THEN 1 ELSE 0 END) AS due_cards,
    CASE
        WHEN SUM(total_reviews) > 0
        THEN 1.0 * SUM(successful_reviews) / SUM(total_reviews)
        ELSE 0
    END AS success_rate
FROM cards
WHERE domain IS NOT NULL AND domain != ''
GROUP BY domain
ORDER BY domain
`, formatTS(now))
	if err != nil {
		log.Error("failed to query domain stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.DomainStat
	for rows.Next() {
		var s models.DomainStat
		if err := rows.Scan(&s.Domain, &s.TotalCards, &s.DueCards, &s.SuccessRate); err != nil {
			log.Error("failed to scan domain stat row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	log.Debug("found %d domain stats", len(stats))
	return stats, rows.Err()
}

func (r *statsRepository) TagCounts(ctx context.Context, domain string) ([]models.TagCount, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	query := sqlBuilder.Select("last_difficulty_tag", "COUNT(*)").
		From("cards").
		Where(squirrel.NotEq{"last_difficulty_tag": nil})
	if domain != "" {
		query = query.Where(squirrel.Eq{"domain": domain})
	}
	query = query.GroupBy("last_difficulty_tag").OrderBy("MIN(last_quality) ASC")

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query tag counts: %v", err)
		return nil, err
	}
	defer rows.Close()

	var counts []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Cards); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}
