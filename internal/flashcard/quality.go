package flashcard

import (
	"errors"
	"fmt"
)

// Quality is the self-reported recall rating for a single review.
type Quality int

const (
	Forgotten Quality = iota
	Struggled
	SuccessfulRecall
	EffortlessRecall
)

// SuccessThreshold is the lowest rating counted as a successful recall.
// Success-rate statistics depend on it.
const SuccessThreshold = SuccessfulRecall

var ErrInvalidQuality = errors.New("invalid quality rating")

var qualityLabels = [...]string{
	Forgotten:        "Forgotten",
	Struggled:        "Struggled",
	SuccessfulRecall: "Successful Recall",
	EffortlessRecall: "Effortless Recall",
}

// ParseQuality converts a raw rating into a Quality, rejecting values outside 0..3.
func ParseQuality(v int) (Quality, error) {
	q := Quality(v)
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %d (expected 0-3)", ErrInvalidQuality, v)
	}
	return q, nil
}

func (q Quality) Valid() bool {
	return q >= Forgotten && q <= EffortlessRecall
}

// Success reports whether the rating counts as a successful recall.
func (q Quality) Success() bool {
	return q >= SuccessThreshold
}

// Label returns the difficulty tag recorded for the rating.
func (q Quality) Label() string {
	if !q.Valid() {
		return ""
	}
	return qualityLabels[q]
}

func (q Quality) String() string {
	if !q.Valid() {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return qualityLabels[q]
}

// Qualities lists every rating in ascending order.
func Qualities() []Quality {
	return []Quality{Forgotten, Struggled, SuccessfulRecall, EffortlessRecall}
}
