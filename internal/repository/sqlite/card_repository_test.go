package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/conceptpulse/internal/flashcard"
	"github.com/vytor/conceptpulse/internal/models"
	"github.com/vytor/conceptpulse/internal/repository"
	"github.com/vytor/conceptpulse/internal/repository/sqlite"
	"github.com/vytor/conceptpulse/internal/testutil"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type CardRepositorySuite struct {
	suite.Suite
	db      *sql.DB
	repo    repository.CardRepository
	reviews repository.ReviewRepository
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db)
	s.reviews = sqlite.NewReviewRepository(s.db)
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) insert(prompt, domain string, created time.Time) int64 {
	c := testutil.NewCard(prompt, domain)
	c.CreatedAt = created
	id, err := s.repo.Insert(context.Background(), c)
	s.Require().NoError(err)
	return id
}

// review applies quality q to the stored card at the given time.
func (s *CardRepositorySuite) review(id int64, q flashcard.Quality, at time.Time) *models.Card {
	ctx := context.Background()
	card, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(card)

	res, err := flashcard.ScheduleReview(card.State(), q)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.ApplyReview(ctx, models.ReviewRecord{
		CardID:          id,
		ExpectedVersion: card.Version,
		Result:          res,
		ReviewedAt:      at,
	}))

	card, err = s.repo.Get(ctx, id)
	s.Require().NoError(err)
	return card
}

func (s *CardRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	c := models.NewCard("What is a goroutine?", "A lightweight thread managed by the Go runtime")
	c.Domain = testutil.Ptr("go")
	c.Notes = testutil.Ptr("see effective go")
	c.CreatedAt = baseTime

	id, err := s.repo.Insert(ctx, c)
	s.Require().NoError(err)
	s.NotZero(id)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("What is a goroutine?", got.Prompt)
	s.Equal("go", *got.Domain)
	s.Equal("see effective go", *got.Notes)
	s.Nil(got.RelatedTopics)
	s.Equal(flashcard.DefaultEaseFactor, got.EaseFactor)
	s.Equal(0, got.IntervalMinutes)
	s.Equal(0, got.Repetitions)
	s.Nil(got.NextReview)
	s.Nil(got.LastQuality)
	s.Equal(baseTime, got.CreatedAt)
	s.Equal(int64(1), got.Version)
}

func (s *CardRepositorySuite) TestGetMissing() {
	got, err := s.repo.Get(context.Background(), 404)
	s.NoError(err)
	s.Nil(got)
}

func (s *CardRepositorySuite) TestInsertBatch() {
	ctx := context.Background()
	cards := []models.Card{
		testutil.NewCard("one", "math"),
		testutil.NewCard("two", "math"),
		testutil.NewCard("three", ""),
	}
	ids, err := s.repo.InsertBatch(ctx, cards)
	s.Require().NoError(err)
	s.Len(ids, 3)

	n, err := s.repo.Count(ctx, models.CardFilter{})
	s.Require().NoError(err)
	s.Equal(3, n)

	n, err = s.repo.Count(ctx, models.CardFilter{Domain: "math"})
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *CardRepositorySuite) TestListSearch() {
	ctx := context.Background()
	s.insert("binary search", "algorithms", baseTime)
	s.insert("merge sort", "algorithms", baseTime.Add(time.Minute))
	s.insert("tcp handshake", "networking", baseTime.Add(2*time.Minute))

	cards, err := s.repo.List(ctx, models.CardFilter{Search: "sort"})
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal("merge sort", cards[0].Prompt)

	cards, err = s.repo.List(ctx, models.CardFilter{Domain: "algorithms", Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal("merge sort", cards[0].Prompt)
}

func (s *CardRepositorySuite) TestUpdateContent() {
	ctx := context.Background()
	id := s.insert("old prompt", "go", baseTime)

	err := s.repo.UpdateContent(ctx, id, models.CardUpdate{
		Prompt: testutil.Ptr("new prompt"),
		Domain: testutil.Ptr(""),
		Notes:  testutil.Ptr("added"),
	}, baseTime.Add(time.Hour))
	s.Require().NoError(err)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal("new prompt", got.Prompt)
	s.Nil(got.Domain)
	s.Equal("added", *got.Notes)
	s.Equal(baseTime.Add(time.Hour), got.UpdatedAt)
	s.Equal(int64(1), got.Version, "content edits do not touch the schedule version")
}

func (s *CardRepositorySuite) TestUpdateContentMissing() {
	err := s.repo.UpdateContent(context.Background(), 99, models.CardUpdate{Prompt: testutil.Ptr("x")}, baseTime)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *CardRepositorySuite) TestDueOrdersUnscheduledFirst() {
	ctx := context.Background()
	reviewedEarly := s.insert("reviewed early", "go", baseTime)
	reviewedLate := s.insert("reviewed late", "go", baseTime.Add(time.Minute))
	newer := s.insert("new b", "go", baseTime.Add(3*time.Minute))
	older := s.insert("new a", "go", baseTime.Add(2*time.Minute))
	future := s.insert("not yet", "go", baseTime.Add(4*time.Minute))

	// Failures retry in 20 minutes, successes in 12 hours.
	s.review(reviewedLate, flashcard.Forgotten, baseTime.Add(10*time.Minute))
	s.review(reviewedEarly, flashcard.Forgotten, baseTime.Add(5*time.Minute))
	s.review(future, flashcard.SuccessfulRecall, baseTime.Add(5*time.Minute))

	now := baseTime.Add(2 * time.Hour)
	cards, err := s.repo.Due(ctx, now, "", 0)
	s.Require().NoError(err)

	ids := make([]int64, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	s.Equal([]int64{older, newer, reviewedEarly, reviewedLate}, ids)

	n, err := s.repo.CountDue(ctx, now, "")
	s.Require().NoError(err)
	s.Equal(4, n)

	cards, err = s.repo.Due(ctx, now, "", 1)
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal(older, cards[0].ID)
}

func (s *CardRepositorySuite) TestDueIncludesExactBoundary() {
	ctx := context.Background()
	id := s.insert("boundary", "", baseTime)
	card := s.review(id, flashcard.Forgotten, baseTime)

	cards, err := s.repo.Due(ctx, *card.NextReview, "", 10)
	s.Require().NoError(err)
	s.Len(cards, 1)

	cards, err = s.repo.Due(ctx, card.NextReview.Add(-time.Second), "", 10)
	s.Require().NoError(err)
	s.Empty(cards)
}

func (s *CardRepositorySuite) TestDueDomainFilter() {
	ctx := context.Background()
	s.insert("a", "math", baseTime)
	s.insert("b", "history", baseTime)
	s.insert("c", "", baseTime)

	cards, err := s.repo.Due(ctx, baseTime, "math", 10)
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Equal("a", cards[0].Prompt)

	cards, err = s.repo.Due(ctx, baseTime, "biology", 10)
	s.Require().NoError(err)
	s.Empty(cards)

	n, err := s.repo.CountDue(ctx, baseTime, "")
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *CardRepositorySuite) TestDomains() {
	s.insert("a", "math", baseTime)
	s.insert("b", "history", baseTime)
	s.insert("c", "math", baseTime)
	s.insert("d", "", baseTime)

	domains, err := s.repo.Domains(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"history", "math"}, domains)
}

func (s *CardRepositorySuite) TestApplyReviewPersistsSchedule() {
	id := s.insert("q", "go", baseTime)
	at := baseTime.Add(time.Hour)

	card := s.review(id, flashcard.SuccessfulRecall, at)
	s.Equal(flashcard.FirstIntervalMinutes, card.IntervalMinutes)
	s.Equal(1, card.Repetitions)
	s.Equal(1, card.TotalReviews)
	s.Equal(1, card.SuccessfulReviews)
	s.InDelta(flashcard.DefaultEaseFactor, card.EaseFactor, 1e-9)
	s.Equal(at, *card.LastReview)
	s.Equal(at.Add(12*time.Hour), *card.NextReview)
	s.Equal(2, *card.LastQuality)
	s.Equal("Successful Recall", *card.LastDifficultyTag)
	s.Equal(int64(2), card.Version)

	card = s.review(id, flashcard.Forgotten, at.Add(13*time.Hour))
	s.Equal(flashcard.RetryIntervalMinutes, card.IntervalMinutes)
	s.Equal(0, card.Repetitions)
	s.Equal(2, card.TotalReviews)
	s.Equal(1, card.SuccessfulReviews)
	s.InDelta(2.26, card.EaseFactor, 1e-9)

	history, err := s.reviews.History(context.Background(), id, 10)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(0, history[0].Quality)
	s.False(history[0].Success)
	s.Equal("Forgotten", history[0].DifficultyTag)
	s.Equal(2, history[1].Quality)
	s.True(history[1].Success)
	s.Equal(at, history[1].ReviewedAt)
}

func (s *CardRepositorySuite) TestApplyReviewStaleVersion() {
	ctx := context.Background()
	id := s.insert("q", "", baseTime)
	card, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)

	res, err := flashcard.ScheduleReview(card.State(), flashcard.SuccessfulRecall)
	s.Require().NoError(err)
	rec := models.ReviewRecord{CardID: id, ExpectedVersion: card.Version, Result: res, ReviewedAt: baseTime}

	s.Require().NoError(s.repo.ApplyReview(ctx, rec))
	s.ErrorIs(s.repo.ApplyReview(ctx, rec), repository.ErrConflict)

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(1, got.TotalReviews, "stale review must not be applied")

	history, err := s.reviews.History(ctx, id, 0)
	s.Require().NoError(err)
	s.Len(history, 1)
}

func (s *CardRepositorySuite) TestApplyReviewMissingCard() {
	res, err := flashcard.ScheduleReview(flashcard.NewState(), flashcard.Forgotten)
	s.Require().NoError(err)

	err = s.repo.ApplyReview(context.Background(), models.ReviewRecord{CardID: 77, ExpectedVersion: 1, Result: res, ReviewedAt: baseTime})
	s.ErrorIs(err, repository.ErrNotFound)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
