package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/conceptpulse/internal/models"
)

// MockReviewRepository is a mock implementation of repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) History(ctx context.Context, cardID int64, limit int) ([]models.ReviewHistory, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewHistory), args.Error(1)
}
