package services

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
)

// CardInput is the payload for authoring a card.
type CardInput struct {
	Prompt         string `json:"prompt" validate:"required,max=4000"`
	Answer         string `json:"answer" validate:"required,max=8000"`
	Domain         string `json:"domain" validate:"max=200"`
	RelatedTopics  string `json:"related_topics" validate:"max=1000"`
	BaseDifficulty string `json:"base_difficulty" validate:"max=100"`
	Notes          string `json:"notes" validate:"max=8000"`
}

func (in *CardInput) normalize() {
	in.Prompt = strings.TrimSpace(in.Prompt)
	in.Answer = strings.TrimSpace(in.Answer)
	in.Domain = strings.TrimSpace(in.Domain)
	in.RelatedTopics = strings.TrimSpace(in.RelatedTopics)
	in.BaseDifficulty = strings.TrimSpace(in.BaseDifficulty)
	in.Notes = strings.TrimSpace(in.Notes)
}

// CardPage is one page of a card listing plus the unpaginated total.
type CardPage struct {
	Cards []models.Card `json:"cards"`
	Total int           `json:"total"`
}

// NextCard is the head of the due queue and how many cards are due in total.
type NextCard struct {
	Card *models.Card `json:"card"`
	Due  int          `json:"due"`
}

// CardService handles card authoring and the due queue
type CardService interface {
	Create(ctx context.Context, in CardInput) (*models.Card, error)
	Update(ctx context.Context, id int64, update models.CardUpdate) (*models.Card, error)
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) (*CardPage, error)
	Due(ctx context.Context, domain string, limit int) ([]models.Card, error)
	Next(ctx context.Context, domain string) (*NextCard, error)
	Domains(ctx context.Context) ([]string, error)
}

type cardService struct {
	cards    repository.CardRepository
	validate *validator.Validate
	now      func() time.Time
	dueLimit int
}

// NewCardService creates a new CardService. dueLimit caps Due when the caller passes no limit.
func NewCardService(cards repository.CardRepository, dueLimit int, opts ...Option) CardService {
	o := applyOptions(opts)
	if dueLimit <= 0 {
		dueLimit = 100
	}
	return &cardService{
		cards:    cards,
		validate: o.validate,
		now:      o.now,
		dueLimit: dueLimit,
	}
}

func (s *cardService) Create(ctx context.Context, in CardInput) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	card := models.NewCard(in.Prompt, in.Answer)
	card.Domain = optional(in.Domain)
	card.RelatedTopics = optional(in.RelatedTopics)
	card.BaseDifficulty = optional(in.BaseDifficulty)
	card.Notes = optional(in.Notes)
	card.CreatedAt = s.now().UTC().Truncate(time.Second)
	card.UpdatedAt = card.CreatedAt

	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	card.ID = id
	card.Version = 1
	log.Info("card created: id=%d", id)
	return &card, nil
}

func (s *cardService) Update(ctx context.Context, id int64, u models.CardUpdate) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")
	log.Debug("updating card: id=%d", id)

	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := strings.TrimSpace(*p)
		return &v
	}
	u.Prompt = trim(u.Prompt)
	u.Answer = trim(u.Answer)
	u.Domain = trim(u.Domain)
	u.RelatedTopics = trim(u.RelatedTopics)
	u.BaseDifficulty = trim(u.BaseDifficulty)
	u.Notes = trim(u.Notes)

	if u.Prompt != nil && *u.Prompt == "" {
		return nil, errors.NewValidationError("prompt", "cannot be empty")
	}
	if u.Answer != nil && *u.Answer == "" {
		return nil, errors.NewValidationError("answer", "cannot be empty")
	}

	if !u.Empty() {
		err := s.cards.UpdateContent(ctx, id, u, s.now())
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("card", id)
		}
		if err != nil {
			log.Error("failed to update card: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}
	return s.Get(ctx, id)
}

func (s *cardService) Get(ctx context.Context, id int64) (*models.Card, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("card_service").Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", id)
	}
	return card, nil
}

func (s *cardService) List(ctx context.Context, filter models.CardFilter) (*CardPage, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, errors.NewBadRequestError("limit and offset must not be negative")
	}
	filter.Domain = strings.TrimSpace(filter.Domain)
	filter.Search = strings.TrimSpace(filter.Search)

	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	total, err := s.cards.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	return &CardPage{Cards: cards, Total: total}, nil
}

func (s *cardService) Due(ctx context.Context, domain string, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")

	if limit < 0 {
		return nil, errors.NewBadRequestError("limit must not be negative")
	}
	if limit == 0 || limit > s.dueLimit {
		limit = s.dueLimit
	}

	cards, err := s.cards.Due(ctx, s.now(), strings.TrimSpace(domain), limit)
	if err != nil {
		log.Error("failed to load due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.Card{}
	}
	log.Debug("due cards: domain=%s, count=%d", domain, len(cards))
	return cards, nil
}

func (s *cardService) Next(ctx context.Context, domain string) (*NextCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_service")
	domain = strings.TrimSpace(domain)
	now := s.now()

	cards, err := s.cards.Due(ctx, now, domain, 1)
	if err != nil {
		log.Error("failed to load next card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		log.Debug("no cards due for review")
		return &NextCard{}, nil
	}

	n, err := s.cards.CountDue(ctx, now, domain)
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &NextCard{Card: &cards[0], Due: n}, nil
}

func (s *cardService) Domains(ctx context.Context) ([]string, error) {
	domains, err := s.cards.Domains(ctx)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("card_service").Error("failed to list domains: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if domains == nil {
		domains = []string{}
	}
	return domains, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
