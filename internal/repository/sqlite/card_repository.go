package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
)

var cardColumns = []string{
	"id", "prompt", "answer", "domain", "related_topics", "base_difficulty", "notes",
	"ease_factor", "interval_minutes", "repetitions", "total_reviews", "successful_reviews",
	"last_review", "next_review", "last_quality", "last_difficulty_tag",
	"created_at", "updated_at", "version",
}

type cardRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var (
		c                                         models.Card
		domain, related, baseDiff, notes, lastTag sql.NullString
		lastReview, nextReview, created, updated  sql.NullString
		lastQuality                               sql.NullInt64
	)
	err := row.Scan(&c.ID, &c.Prompt, &c.Answer, &domain, &related, &baseDiff, &notes,
		&c.EaseFactor, &c.IntervalMinutes, &c.Repetitions, &c.TotalReviews, &c.SuccessfulReviews,
		&lastReview, &nextReview, &lastQuality, &lastTag,
		&created, &updated, &c.Version)
	if err != nil {
		return c, err
	}

	c.Domain = stringPtr(domain)
	c.RelatedTopics = stringPtr(related)
	c.BaseDifficulty = stringPtr(baseDiff)
	c.Notes = stringPtr(notes)
	c.LastDifficultyTag = stringPtr(lastTag)
	if lastQuality.Valid {
		q := int(lastQuality.Int64)
		c.LastQuality = &q
	}
	if c.LastReview, err = parseNullTS(lastReview); err != nil {
		return c, err
	}
	if c.NextReview, err = parseNullTS(nextReview); err != nil {
		return c, err
	}
	if created.Valid {
		if c.CreatedAt, err = parseTS(created.String); err != nil {
			return c, err
		}
	}
	if updated.Valid {
		if c.UpdatedAt, err = parseTS(updated.String); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (r *cardRepository) queryCards(ctx context.Context, query squirrel.SelectBuilder) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	stmt, args, err := sqlBuilder.Select(cardColumns...).From("cards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, stmt, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func applyCardFilter(query squirrel.SelectBuilder, filter models.CardFilter) squirrel.SelectBuilder {
	if filter.Domain != "" {
		query = query.Where(squirrel.Eq{"domain": filter.Domain})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"prompt": pattern},
			squirrel.Like{"answer": pattern},
		})
	}
	return query
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: domain=%s, search=%s, limit=%d, offset=%d", filter.Domain, filter.Search, filter.Limit, filter.Offset)

	query := applyCardFilter(sqlBuilder.Select(cardColumns...).From("cards"), filter).
		OrderBy("COALESCE(next_review, created_at) ASC", "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := max(filter.Offset, 0)
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	cards, err := r.queryCards(ctx, query)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d cards", len(cards))
	return cards, nil
}

func (r *cardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	stmt, args, err := applyCardFilter(sqlBuilder.Select("COUNT(*)").From("cards"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		log.Error("failed to count cards: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *cardRepository) insertBuilder(c models.Card) squirrel.InsertBuilder {
	created := c.CreatedAt
	if created.IsZero() {
		created = r.now()
	}
	return sqlBuilder.Insert("cards").
		Columns("prompt", "answer", "domain", "related_topics", "base_difficulty", "notes",
			"ease_factor", "interval_minutes", "repetitions", "created_at", "updated_at").
		Values(c.Prompt, c.Answer, nullString(c.Domain), nullString(c.RelatedTopics),
			nullString(c.BaseDifficulty), nullString(c.Notes),
			c.EaseFactor, c.IntervalMinutes, c.Repetitions, formatTS(created), formatTS(created))
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: prompt_len=%d", len(c.Prompt))

	stmt, args, err := r.insertBuilder(c).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	log.Debug("card inserted: id=%d", id)
	return id, nil
}

func (r *cardRepository) InsertBatch(ctx context.Context, cards []models.Card) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting %d cards", len(cards))

	ids := make([]int64, 0, len(cards))
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, c := range cards {
			stmt, args, err := r.insertBuilder(c).ToSql()
			if err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, stmt, args...)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert card batch: %v", err)
		return nil, err
	}
	return ids, nil
}

func (r *cardRepository) UpdateContent(ctx context.Context, id int64, u models.CardUpdate, at time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card content: id=%d", id)

	if u.Empty() {
		return nil
	}

	query := sqlBuilder.Update("cards").Where(squirrel.Eq{"id": id})
	if u.Prompt != nil {
		query = query.Set("prompt", *u.Prompt)
	}
	if u.Answer != nil {
		query = query.Set("answer", *u.Answer)
	}
	optional := []struct {
		column string
		value  *string
	}{
		{"domain", u.Domain},
		{"related_topics", u.RelatedTopics},
		{"base_difficulty", u.BaseDifficulty},
		{"notes", u.Notes},
	}
	for _, f := range optional {
		if f.value == nil {
			continue
		}
		if *f.value == "" {
			query = query.Set(f.column, nil)
		} else {
			query = query.Set(f.column, *f.value)
		}
	}
	query = query.Set("updated_at", formatTS(at))

	stmt, args, err := query.ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func dueQuery(columns []string, now time.Time, domain string) squirrel.SelectBuilder {
	query := sqlBuilder.Select(columns...).From("cards").Where(squirrel.Or{
		squirrel.Eq{"next_review": nil},
		squirrel.LtOrEq{"next_review": formatTS(now)},
	})
	if domain != "" {
		query = query.Where(squirrel.Eq{"domain": domain})
	}
	return query
}

func (r *cardRepository) Due(ctx context.Context, now time.Time, domain string, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching due cards: now=%s, domain=%s, limit=%d", formatTS(now), domain, limit)

	query := dueQuery(cardColumns, now, domain).
		OrderBy("next_review IS NOT NULL", "next_review ASC", "created_at ASC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	cards, err := r.queryCards(ctx, query)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d due cards", len(cards))
	return cards, nil
}

func (r *cardRepository) CountDue(ctx context.Context, now time.Time, domain string) (int, error) {
	stmt, args, err := dueQuery([]string{"COUNT(*)"}, now, domain).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		logger.FromContext(ctx).WithPrefix("card_repo").Error("failed to count due cards: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *cardRepository) Domains(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT domain FROM cards
WHERE domain IS NOT NULL AND domain != ''
ORDER BY domain
`)
	if err != nil {
		log.Error("failed to query domains: %v", err)
		return nil, err
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func (r *cardRepository) ApplyReview(ctx context.Context, rec models.ReviewRecord) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	res := rec.Result
	log.Debug("applying review: card_id=%d, version=%d, quality=%d, interval=%d, ease=%.2f",
		rec.CardID, rec.ExpectedVersion, res.Quality, res.IntervalMinutes, res.EaseFactor)

	reviewedAt := formatTS(rec.ReviewedAt)
	nextReview := formatTS(res.NextReview(rec.ReviewedAt))
	successInc := 0
	if res.Success {
		successInc = 1
	}

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		out, err := tx.ExecContext(ctx, `
UPDATE cards
SET ease_factor = ?,
    interval_minutes = ?,
    repetitions = ?,
    total_reviews = total_reviews + 1,
    successful_reviews = successful_reviews + ?,
    last_review = ?,
    next_review = ?,
    last_quality = ?,
    last_difficulty_tag = ?,
    updated_at = ?,
    version = version + 1
WHERE id = ? AND version = ?
`, res.EaseFactor, res.IntervalMinutes, res.Repetitions, successInc,
			reviewedAt, nextReview, int(res.Quality), res.DifficultyTag, reviewedAt,
			rec.CardID, rec.ExpectedVersion)
		if err != nil {
			log.Error("failed to update card schedule: %v", err)
			return err
		}
		n, err := out.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var current int64
			err := tx.QueryRowContext(ctx, `SELECT version FROM cards WHERE id = ?`, rec.CardID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			if err != nil {
				return err
			}
			log.Warn("stale review rejected: card_id=%d, expected_version=%d, current_version=%d", rec.CardID, rec.ExpectedVersion, current)
			return repository.ErrConflict
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO review_history (card_id, quality, difficulty_tag, success, ease_factor, interval_minutes, time_seconds, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rec.CardID, int(res.Quality), res.DifficultyTag, res.Success, res.EaseFactor, res.IntervalMinutes, rec.TimeSeconds, reviewedAt)
		if err != nil {
			log.Error("failed to insert review history: %v", err)
		}
		return err
	})
}
