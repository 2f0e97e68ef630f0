package api

import (
	"context"

	"github.com/vytor/conceptpulse/internal/services"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Cards        services.CardService
	Reviews      services.ReviewService
	Stats        services.StatsService
	Decks        services.DeckService
	DB           Pinger
	MaxDeckBytes int64
}
