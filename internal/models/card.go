package models

import (
	"time"

	"github.com/vytor/conceptpulse/internal/flashcard"
)

type Card struct {
	ID                int64      `json:"id"`
	Prompt            string     `json:"prompt"`
	Answer            string     `json:"answer"`
	Domain            *string    `json:"domain"`
	RelatedTopics     *string    `json:"related_topics"`
	BaseDifficulty    *string    `json:"base_difficulty"`
	Notes             *string    `json:"notes"`
	EaseFactor        float64    `json:"ease_factor"`
	IntervalMinutes   int        `json:"interval_minutes"`
	Repetitions       int        `json:"repetitions"`
	TotalReviews      int        `json:"total_reviews"`
	SuccessfulReviews int        `json:"successful_reviews"`
	LastReview        *time.Time `json:"last_review"`
	NextReview        *time.Time `json:"next_review"`
	LastQuality       *int       `json:"last_quality"`
	LastDifficultyTag *string    `json:"last_difficulty_tag"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int64      `json:"version"`
}

// NewCard returns a card with the default scheduling state.
func NewCard(prompt, answer string) Card {
	s := flashcard.NewState()
	return Card{
		Prompt:          prompt,
		Answer:          answer,
		EaseFactor:      s.EaseFactor,
		IntervalMinutes: s.IntervalMinutes,
		Repetitions:     s.Repetitions,
	}
}

// State projects the fields the scheduler reads.
func (c Card) State() flashcard.State {
	return flashcard.State{
		EaseFactor:      c.EaseFactor,
		IntervalMinutes: c.IntervalMinutes,
		Repetitions:     c.Repetitions,
	}
}

// SuccessRate is successful reviews over total reviews, 0 for unreviewed cards.
func (c Card) SuccessRate() float64 {
	if c.TotalReviews == 0 {
		return 0
	}
	return float64(c.SuccessfulReviews) / float64(c.TotalReviews)
}

// IsDue reports whether the card should be reviewed at now. Unscheduled cards are always due.
func (c Card) IsDue(now time.Time) bool {
	return c.NextReview == nil || !c.NextReview.After(now)
}

// CardFilter narrows card listings. Zero values mean no filter.
type CardFilter struct {
	Domain string
	Search string
	Limit  int
	Offset int
}

// CardUpdate carries a partial content edit; nil fields are left unchanged.
type CardUpdate struct {
	Prompt         *string `json:"prompt,omitempty"`
	Answer         *string `json:"answer,omitempty"`
	Domain         *string `json:"domain,omitempty"`
	RelatedTopics  *string `json:"related_topics,omitempty"`
	BaseDifficulty *string `json:"base_difficulty,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u CardUpdate) Empty() bool {
	return u.Prompt == nil && u.Answer == nil && u.Domain == nil &&
		u.RelatedTopics == nil && u.BaseDifficulty == nil && u.Notes == nil
}

// ReviewRecord is one scheduler outcome to be applied to a stored card.
// ExpectedVersion is the card version the outcome was computed from.
type ReviewRecord struct {
	CardID          int64
	ExpectedVersion int64
	Result          flashcard.ReviewResult
	ReviewedAt      time.Time
	TimeSeconds     float64
}

type ReviewHistory struct {
	ID              int64     `json:"id"`
	CardID          int64     `json:"card_id"`
	Quality         int       `json:"quality"`
	DifficultyTag   string    `json:"difficulty_tag"`
	Success         bool      `json:"success"`
	EaseFactor      float64   `json:"ease_factor"`
	IntervalMinutes int       `json:"interval_minutes"`
	TimeSeconds     float64   `json:"time_seconds"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}
