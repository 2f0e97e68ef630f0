package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/services"
)

// MockReviewService is a mock implementation of services.ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Review(ctx context.Context, cardID int64, quality int, timeSeconds float64) (*services.ReviewOutcome, error) {
	args := m.Called(ctx, cardID, quality, timeSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ReviewOutcome), args.Error(1)
}

func (m *MockReviewService) History(ctx context.Context, cardID int64, limit int) ([]models.ReviewHistory, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewHistory), args.Error(1)
}
