package flashcard

import (
	"math"
	"time"
)

const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.5

	easeStep = 0.12

	// probeIntervalMinutes replaces a zero interval as the growth base.
	probeIntervalMinutes = 10
	// RetryIntervalMinutes is the fixed interval after a failed recall.
	RetryIntervalMinutes  = 20
	FirstIntervalMinutes  = 12 * 60
	SecondIntervalMinutes = 24 * 60
	// MinSuccessIntervalMinutes floors every successful interval.
	MinSuccessIntervalMinutes = 30

	effortlessBonus = 1.2
)

// State is the part of a card the scheduler reads.
type State struct {
	EaseFactor      float64 `json:"ease_factor"`
	IntervalMinutes int     `json:"interval_minutes"`
	Repetitions     int     `json:"repetitions"`
}

// NewState returns the scheduling state of a freshly authored card.
func NewState() State {
	return State{EaseFactor: DefaultEaseFactor}
}

// ReviewResult is the scheduler output for one review.
type ReviewResult struct {
	EaseFactor      float64 `json:"ease_factor"`
	IntervalMinutes int     `json:"interval_minutes"`
	Repetitions     int     `json:"repetitions"`
	Quality         Quality `json:"quality"`
	Success         bool    `json:"success"`
	DifficultyTag   string  `json:"difficulty_tag"`
}

// State returns the scheduling state to persist.
func (r ReviewResult) State() State {
	return State{
		EaseFactor:      r.EaseFactor,
		IntervalMinutes: r.IntervalMinutes,
		Repetitions:     r.Repetitions,
	}
}

// NextReview returns when the card becomes due given the review time.
func (r ReviewResult) NextReview(reviewedAt time.Time) time.Time {
	return reviewedAt.Add(time.Duration(r.IntervalMinutes) * time.Minute)
}

// ScheduleReview computes the next scheduling state for a card rated with quality.
// It is a pure function: the input state is not modified and no clock is read.
//
// Failures (quality below SuccessThreshold) reset repetitions and retry after
// RetryIntervalMinutes. The first two successes use fixed intervals; later ones
// multiply the previous interval by the updated ease factor, with an extra bonus
// for effortless recalls. Fractional minutes are truncated.
func ScheduleReview(s State, q Quality) (ReviewResult, error) {
	if !q.Valid() {
		_, err := ParseQuality(int(q))
		return ReviewResult{}, err
	}

	base := s.IntervalMinutes
	if base <= 0 {
		base = probeIntervalMinutes
	}

	ef := clamp(s.EaseFactor+float64(q-SuccessThreshold)*easeStep, MinEaseFactor, MaxEaseFactor)

	reps := s.Repetitions
	var interval int
	if !q.Success() {
		reps = 0
		interval = RetryIntervalMinutes
	} else {
		reps++
		switch reps {
		case 1:
			interval = FirstIntervalMinutes
		case 2:
			interval = SecondIntervalMinutes
		default:
			interval = int(math.Floor(float64(base) * ef))
			if q == EffortlessRecall {
				interval = int(math.Floor(float64(interval) * effortlessBonus))
			}
		}
		interval = max(interval, MinSuccessIntervalMinutes)
	}

	return ReviewResult{
		EaseFactor:      ef,
		IntervalMinutes: interval,
		Repetitions:     reps,
		Quality:         q,
		Success:         q.Success(),
		DifficultyTag:   q.Label(),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
