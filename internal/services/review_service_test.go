package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/flashcard"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
	"github.com/vytor/conceptpulse/internal/services"
	"github.com/vytor/conceptpulse/internal/testutil"
	"github.com/vytor/conceptpulse/internal/testutil/mocks"
)

func newReviewService() (*mocks.MockCardRepository, *mocks.MockReviewRepository, services.ReviewService) {
	cards := new(mocks.MockCardRepository)
	reviews := new(mocks.MockReviewRepository)
	return cards, reviews, services.NewReviewService(cards, reviews, services.WithClock(testutil.FixedClock(now)))
}

func TestReviewAppliesScheduleWithLoadedVersion(t *testing.T) {
	cards, _, svc := newReviewService()
	ctx := context.Background()

	card := &models.Card{ID: 5, EaseFactor: 2.5, IntervalMinutes: 1440, Repetitions: 2, Version: 3}
	cards.On("Get", ctx, int64(5)).Return(card, nil)
	cards.On("ApplyReview", ctx, mock.MatchedBy(func(rec models.ReviewRecord) bool {
		return rec.CardID == 5 &&
			rec.ExpectedVersion == 3 &&
			rec.ReviewedAt.Equal(now) &&
			rec.TimeSeconds == 4.5 &&
			rec.Result.IntervalMinutes == 4526 &&
			rec.Result.Repetitions == 3
	})).Return(nil)

	out, err := svc.Review(ctx, 5, int(flashcard.EffortlessRecall), 4.5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.CardID)
	assert.Equal(t, "Effortless Recall", out.Result.DifficultyTag)
	assert.InDelta(t, 2.62, out.Result.EaseFactor, 1e-9)
	assert.Equal(t, now, out.ReviewedAt)
	assert.Equal(t, now.Add(4526*time.Minute), out.NextReview)
	assert.Equal(t, "3 day(s)", out.NextIn)
	cards.AssertExpectations(t)
}

func TestReviewFailureResetsRepetitions(t *testing.T) {
	cards, _, svc := newReviewService()
	ctx := context.Background()

	cards.On("Get", ctx, int64(1)).Return(&models.Card{ID: 1, EaseFactor: 1.35, IntervalMinutes: 5000, Repetitions: 6, Version: 1}, nil)
	cards.On("ApplyReview", ctx, mock.Anything).Return(nil)

	out, err := svc.Review(ctx, 1, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.Repetitions)
	assert.Equal(t, flashcard.RetryIntervalMinutes, out.Result.IntervalMinutes)
	assert.Equal(t, flashcard.MinEaseFactor, out.Result.EaseFactor)
	assert.False(t, out.Result.Success)
	assert.Equal(t, "20 minute(s)", out.NextIn)
}

func TestReviewRejectsInvalidQualityBeforeLoading(t *testing.T) {
	cards, _, svc := newReviewService()

	for _, q := range []int{-1, 4, 5} {
		_, err := svc.Review(context.Background(), 1, q, 0)
		appErr := requireAppError(t, err, apperrors.ErrCodeValidation)
		assert.Contains(t, appErr.Message, "quality")
	}
	_, err := svc.Review(context.Background(), 1, 2, -3)
	requireAppError(t, err, apperrors.ErrCodeValidation)

	cards.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReviewErrors(t *testing.T) {
	ctx := context.Background()
	card := &models.Card{ID: 2, EaseFactor: 2.5, Version: 1}

	tests := []struct {
		name     string
		setup    func(*mocks.MockCardRepository)
		wantCode string
	}{
		{
			name: "missing card",
			setup: func(m *mocks.MockCardRepository) {
				m.On("Get", ctx, int64(2)).Return(nil, nil)
			},
			wantCode: apperrors.ErrCodeNotFound,
		},
		{
			name: "load failure",
			setup: func(m *mocks.MockCardRepository) {
				m.On("Get", ctx, int64(2)).Return(nil, errors.New("io"))
			},
			wantCode: apperrors.ErrCodeInternal,
		},
		{
			name: "concurrent review",
			setup: func(m *mocks.MockCardRepository) {
				m.On("Get", ctx, int64(2)).Return(card, nil)
				m.On("ApplyReview", ctx, mock.Anything).Return(repository.ErrConflict)
			},
			wantCode: apperrors.ErrCodeConflict,
		},
		{
			name: "deleted between load and apply",
			setup: func(m *mocks.MockCardRepository) {
				m.On("Get", ctx, int64(2)).Return(card, nil)
				m.On("ApplyReview", ctx, mock.Anything).Return(repository.ErrNotFound)
			},
			wantCode: apperrors.ErrCodeNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cards, _, svc := newReviewService()
			tt.setup(cards)
			_, err := svc.Review(ctx, 2, 2, 0)
			appErr := requireAppError(t, err, tt.wantCode)
			if tt.wantCode == apperrors.ErrCodeConflict {
				assert.ErrorIs(t, appErr, repository.ErrConflict)
			}
		})
	}
}

func TestReviewHistory(t *testing.T) {
	cards, reviews, svc := newReviewService()
	ctx := context.Background()

	cards.On("Get", ctx, int64(8)).Return(&models.Card{ID: 8}, nil)
	reviews.On("History", ctx, int64(8), 20).Return([]models.ReviewHistory{{ID: 1, CardID: 8, Quality: 3}}, nil)

	history, err := svc.History(ctx, 8, 20)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	cards.On("Get", ctx, int64(9)).Return(nil, nil)
	_, err = svc.History(ctx, 9, 20)
	requireAppError(t, err, apperrors.ErrCodeNotFound)
	reviews.AssertNumberOfCalls(t, "History", 1)
}
