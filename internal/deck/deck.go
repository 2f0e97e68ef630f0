// Package deck reads and writes portable card decks as YAML or JSON documents.
package deck

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/conceptpulse/internal/models"
)

var ErrEmptyDeck = errors.New("deck has no cards")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Deck is a named collection of cards. Cards without a domain inherit Domain.
type Deck struct {
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Domain string `yaml:"domain,omitempty" json:"domain,omitempty"`
	Cards  []Card `yaml:"cards" json:"cards" validate:"dive"`
}

type Card struct {
	Prompt         string    `yaml:"prompt" json:"prompt" validate:"required"`
	Answer         string    `yaml:"answer" json:"answer" validate:"required"`
	Domain         string    `yaml:"domain,omitempty" json:"domain,omitempty"`
	RelatedTopics  string    `yaml:"related_topics,omitempty" json:"related_topics,omitempty"`
	BaseDifficulty string    `yaml:"base_difficulty,omitempty" json:"base_difficulty,omitempty"`
	Notes          string    `yaml:"notes,omitempty" json:"notes,omitempty"`
	Schedule       *Schedule `yaml:"schedule,omitempty" json:"schedule,omitempty"`
}

// Schedule is the exported scheduling snapshot of a card. Imports ignore it.
type Schedule struct {
	EaseFactor        float64    `yaml:"ease_factor" json:"ease_factor"`
	IntervalMinutes   int        `yaml:"interval_minutes" json:"interval_minutes"`
	Repetitions       int        `yaml:"repetitions" json:"repetitions"`
	TotalReviews      int        `yaml:"total_reviews" json:"total_reviews"`
	SuccessfulReviews int        `yaml:"successful_reviews" json:"successful_reviews"`
	LastReview        *time.Time `yaml:"last_review,omitempty" json:"last_review,omitempty"`
	NextReview        *time.Time `yaml:"next_review,omitempty" json:"next_review,omitempty"`
}

// Normalize trims every text field and applies the deck domain to cards without one.
func (d *Deck) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Domain = strings.TrimSpace(d.Domain)
	for i := range d.Cards {
		c := &d.Cards[i]
		c.Prompt = strings.TrimSpace(c.Prompt)
		c.Answer = strings.TrimSpace(c.Answer)
		c.Domain = strings.TrimSpace(c.Domain)
		c.RelatedTopics = strings.TrimSpace(c.RelatedTopics)
		c.BaseDifficulty = strings.TrimSpace(c.BaseDifficulty)
		c.Notes = strings.TrimSpace(c.Notes)
		if c.Domain == "" {
			c.Domain = d.Domain
		}
	}
}

// Validate normalizes the deck and checks every card has a prompt and an answer.
func (d *Deck) Validate() error {
	d.Normalize()
	if len(d.Cards) == 0 {
		return ErrEmptyDeck
	}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid deck: %s is required (%s)", strings.ToLower(verrs[0].Field()), verrs[0].Namespace())
		}
		return fmt.Errorf("invalid deck: %w", err)
	}
	return nil
}

// Models converts the deck into unsaved cards with the default scheduling state.
func (d *Deck) Models() []models.Card {
	cards := make([]models.Card, 0, len(d.Cards))
	for _, c := range d.Cards {
		m := models.NewCard(c.Prompt, c.Answer)
		domain := c.Domain
		if domain == "" {
			domain = d.Domain
		}
		m.Domain = optional(domain)
		m.RelatedTopics = optional(c.RelatedTopics)
		m.BaseDifficulty = optional(c.BaseDifficulty)
		m.Notes = optional(c.Notes)
		cards = append(cards, m)
	}
	return cards
}

// FromModels builds an export deck. Card domains equal to domain are omitted.
func FromModels(name, domain string, cards []models.Card) *Deck {
	d := &Deck{Name: name, Domain: domain, Cards: make([]Card, 0, len(cards))}
	for _, m := range cards {
		c := Card{
			Prompt:         m.Prompt,
			Answer:         m.Answer,
			Domain:         deref(m.Domain),
			RelatedTopics:  deref(m.RelatedTopics),
			BaseDifficulty: deref(m.BaseDifficulty),
			Notes:          deref(m.Notes),
			Schedule: &Schedule{
				EaseFactor:        m.EaseFactor,
				IntervalMinutes:   m.IntervalMinutes,
				Repetitions:       m.Repetitions,
				TotalReviews:      m.TotalReviews,
				SuccessfulReviews: m.SuccessfulReviews,
				LastReview:        m.LastReview,
				NextReview:        m.NextReview,
			},
		}
		if domain != "" && c.Domain == domain {
			c.Domain = ""
		}
		d.Cards = append(d.Cards, c)
	}
	return d
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
