package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/conceptpulse/internal/db"
	"github.com/vytor/conceptpulse/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// NewCard builds an unsaved card in the given domain with the default schedule.
func NewCard(prompt, domain string) models.Card {
	c := models.NewCard(prompt, "answer to "+prompt)
	if domain != "" {
		c.Domain = Ptr(domain)
	}
	return c
}
