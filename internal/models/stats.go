package models

type DeckStats struct {
	Domain             string  `json:"domain,omitempty"`
	TotalCards         int     `json:"total_cards"`
	DueCards           int     `json:"due_cards"`
	NewCards           int     `json:"new_cards"`
	TotalReviews       int     `json:"total_reviews"`
	SuccessfulReviews  int     `json:"successful_reviews"`
	SuccessRate        float64 `json:"success_rate"`
	AvgEaseFactor      float64 `json:"avg_ease_factor"`
	AvgIntervalMinutes float64 `json:"avg_interval_minutes"`
}

type DomainStat struct {
	Domain      string  `json:"domain"`
	TotalCards  int     `json:"total_cards"`
	DueCards    int     `json:"due_cards"`
	SuccessRate float64 `json:"success_rate"`
}

// TagCount is how many cards currently carry a difficulty tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Cards int    `json:"cards"`
}
