package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/conceptpulse/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) DeckStats(ctx context.Context, now time.Time, domain string) (*models.DeckStats, error) {
	args := m.Called(ctx, now, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeckStats), args.Error(1)
}

func (m *MockStatsRepository) DomainStats(ctx context.Context, now time.Time) ([]models.DomainStat, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DomainStat), args.Error(1)
}

func (m *MockStatsRepository) TagCounts(ctx context.Context, domain string) ([]models.TagCount, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TagCount), args.Error(1)
}
