package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"github.com/vytor/conceptpulse/internal/db"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/repository/sqlite"
	"github.com/vytor/conceptpulse/internal/services"
)

// app is the set of services one CLI invocation works with.
type app struct {
	db      *db.DB
	fs      afero.Fs
	cards   services.CardService
	reviews services.ReviewService
	stats   services.StatsService
	decks   services.DeckService
}

func openApp(command *cli.Command, fs afero.Fs) (*app, error) {
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(command.String("log-level"))),
		logger.WithOutput(command.Root().ErrWriter),
	)
	logger.SetDefault(log)

	database, err := db.Open(command.String("db"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cardRepo := sqlite.NewCardRepository(database.DB)
	return &app{
		db:      database,
		fs:      fs,
		cards:   services.NewCardService(cardRepo, int(command.Int("limit-cap"))),
		reviews: services.NewReviewService(cardRepo, sqlite.NewReviewRepository(database.DB)),
		stats:   services.NewStatsService(sqlite.NewStatsRepository(database.DB)),
		decks:   services.NewDeckService(cardRepo, nil),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp opens the database for the duration of fn.
func withApp(fs afero.Fs, fn func(ctx context.Context, command *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		a, err := openApp(command, fs)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, command, a)
	}
}
