package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/conceptpulse/internal/deck"
	apperrors "github.com/vytor/conceptpulse/internal/errors"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/services"
	"github.com/vytor/conceptpulse/internal/testutil"
	"github.com/vytor/conceptpulse/internal/testutil/mocks"
	"github.com/vytor/conceptpulse/internal/worker"
)

func sampleDeck() *deck.Deck {
	return &deck.Deck{Name: "networking", Domain: "net", Cards: []deck.Card{
		{Prompt: "TCP or UDP for DNS?", Answer: "UDP, falling back to TCP"},
		{Prompt: "What does TTL bound?", Answer: "Hop count"},
	}}
}

func TestDeckImport(t *testing.T) {
	repo := new(mocks.MockCardRepository)
	svc := services.NewDeckService(repo, nil)
	ctx := context.Background()

	repo.On("InsertBatch", ctx, mock.MatchedBy(func(cards []models.Card) bool {
		return len(cards) == 2 && *cards[0].Domain == "net" && cards[1].Repetitions == 0
	})).Return([]int64{1, 2}, nil)

	res, err := svc.Import(ctx, sampleDeck())
	require.NoError(t, err)
	assert.Equal(t, "networking", res.Deck)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, []int64{1, 2}, res.IDs)
}

func TestDeckImportRejectsInvalidDeck(t *testing.T) {
	repo := new(mocks.MockCardRepository)
	svc := services.NewDeckService(repo, nil)

	_, err := svc.Import(context.Background(), &deck.Deck{Name: "empty"})
	requireAppError(t, err, apperrors.ErrCodeValidation)
	repo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}

func TestDeckEnqueue(t *testing.T) {
	repo := new(mocks.MockCardRepository)
	queue := new(mocks.MockJobQueue)
	svc := services.NewDeckService(repo, queue)
	d := sampleDeck()

	queue.On("EnqueueDeckImport", mock.AnythingOfType("string"), d).Return(nil).Once()
	ticket, err := svc.Enqueue(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "queued", ticket.Status)
	assert.Equal(t, 2, ticket.Cards)
	_, err = uuid.Parse(ticket.JobID)
	assert.NoError(t, err)

	queue.On("EnqueueDeckImport", mock.AnythingOfType("string"), d).Return(worker.ErrQueueFull).Once()
	_, err = svc.Enqueue(context.Background(), d)
	appErr := requireAppError(t, err, apperrors.ErrCodeUnavailable)
	assert.ErrorIs(t, appErr, worker.ErrQueueFull)
}

func TestDeckEnqueueWithoutQueue(t *testing.T) {
	svc := services.NewDeckService(new(mocks.MockCardRepository), nil)
	_, err := svc.Enqueue(context.Background(), sampleDeck())
	requireAppError(t, err, apperrors.ErrCodeUnavailable)
}

func TestDeckExportPaginates(t *testing.T) {
	repo := new(mocks.MockCardRepository)
	svc := services.NewDeckService(repo, nil)
	ctx := context.Background()

	full := make([]models.Card, 500)
	for i := range full {
		full[i] = testutil.NewCard("p", "go")
	}
	repo.On("List", ctx, models.CardFilter{Domain: "go", Limit: 500}).Return(full, nil)
	repo.On("List", ctx, models.CardFilter{Domain: "go", Limit: 500, Offset: 500}).Return([]models.Card{testutil.NewCard("last", "go")}, nil)

	d, err := svc.Export(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "go", d.Name)
	assert.Len(t, d.Cards, 501)
	assert.Empty(t, d.Cards[500].Domain)
	require.NotNil(t, d.Cards[500].Schedule)
	assert.Equal(t, 2.5, d.Cards[500].Schedule.EaseFactor)

	repo.On("List", ctx, models.CardFilter{Limit: 500}).Return(nil, errors.New("boom"))
	_, err = svc.Export(ctx, "")
	requireAppError(t, err, apperrors.ErrCodeInternal)
}
