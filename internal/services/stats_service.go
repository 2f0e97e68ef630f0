package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
)

// Overview combines the deck totals with the current difficulty tag spread.
type Overview struct {
	models.DeckStats
	Tags []models.TagCount `json:"tags"`
}

// StatsService handles statistics-related business logic
type StatsService interface {
	Overview(ctx context.Context, domain string) (*Overview, error)
	Domains(ctx context.Context) ([]models.DomainStat, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	now       func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository, opts ...Option) StatsService {
	o := applyOptions(opts)
	return &statsService{statsRepo: statsRepo, now: o.now}
}

func (s *statsService) Overview(ctx context.Context, domain string) (*Overview, error) {
	log := logger.FromContext(ctx)
	domain = strings.TrimSpace(domain)
	log.Debug("getting deck overview: domain=%s", domain)

	stats, err := s.statsRepo.DeckStats(ctx, s.now(), domain)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	tags, err := s.statsRepo.TagCounts(ctx, domain)
	if err != nil {
		log.Error("failed to get tag counts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	return &Overview{DeckStats: *stats, Tags: tags}, nil
}

func (s *statsService) Domains(ctx context.Context) ([]models.DomainStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting domain stats")

	stats, err := s.statsRepo.DomainStats(ctx, s.now())
	if err != nil {
		log.Error("failed to get domain stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if stats == nil {
		stats = []models.DomainStat{}
	}
	return stats, nil
}
