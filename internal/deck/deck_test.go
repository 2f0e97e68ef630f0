package deck_test

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/conceptpulse/internal/deck"
	"github.com/vytor/conceptpulse/internal/models"
)

const yamlDeck = `
name: Go basics
domain: go
cards:
  - prompt: "  What does defer do?  "
    answer: Runs a call when the surrounding function returns
    notes: LIFO order
  - prompt: What is a rune?
    answer: An int32 holding a Unicode code point
    domain: unicode
`

func TestUnmarshalYAML(t *testing.T) {
	d, err := deck.Unmarshal([]byte(yamlDeck), deck.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "Go basics", d.Name)
	require.Len(t, d.Cards, 2)
	assert.Equal(t, "What does defer do?", d.Cards[0].Prompt)
	assert.Equal(t, "go", d.Cards[0].Domain)
	assert.Equal(t, "unicode", d.Cards[1].Domain)

	cards := d.Models()
	require.Len(t, cards, 2)
	assert.Equal(t, "go", *cards[0].Domain)
	assert.Equal(t, "LIFO order", *cards[0].Notes)
	assert.Nil(t, cards[0].RelatedTopics)
	assert.Equal(t, 2.5, cards[0].EaseFactor)
	assert.Nil(t, cards[0].NextReview)
}

func TestUnmarshalJSON(t *testing.T) {
	data := `{"domain":"math","cards":[{"prompt":"2+2","answer":"4"}]}`
	d, err := deck.Unmarshal([]byte(data), deck.FormatJSON)
	require.NoError(t, err)
	require.Len(t, d.Cards, 1)
	assert.Equal(t, "math", d.Cards[0].Domain)
}

func TestUnmarshalRejectsInvalidDecks(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no cards", "name: empty\ncards: []\n"},
		{"missing answer", "cards:\n  - prompt: q\n"},
		{"blank prompt", "cards:\n  - prompt: '   '\n    answer: a\n"},
		{"malformed", "cards: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deck.Unmarshal([]byte(tt.data), deck.FormatYAML)
			assert.Error(t, err)
		})
	}

	_, err := deck.Unmarshal([]byte("cards: []"), deck.FormatYAML)
	assert.ErrorIs(t, err, deck.ErrEmptyDeck)
}

func TestReadEnforcesSizeLimit(t *testing.T) {
	_, err := deck.Read(strings.NewReader(yamlDeck), deck.FormatYAML, 16)
	assert.ErrorContains(t, err, "exceeds")

	d, err := deck.Read(strings.NewReader(yamlDeck), deck.FormatYAML, 1<<20)
	require.NoError(t, err)
	assert.Len(t, d.Cards, 2)
}

func TestFormatDetection(t *testing.T) {
	f, err := deck.FormatFromPath("decks/go.yml")
	require.NoError(t, err)
	assert.Equal(t, deck.FormatYAML, f)

	f, err = deck.FormatFromPath("backup.JSON")
	require.NoError(t, err)
	assert.Equal(t, deck.FormatJSON, f)

	_, err = deck.FormatFromPath("deck.txt")
	assert.Error(t, err)
	_, err = deck.FormatFromPath("deck")
	assert.Error(t, err)

	assert.Equal(t, deck.FormatJSON, deck.FormatFromContentType("application/json; charset=utf-8"))
	assert.Equal(t, deck.FormatYAML, deck.FormatFromContentType("application/yaml"))
	assert.Equal(t, deck.FormatYAML, deck.FormatFromContentType(""))
}

func TestSaveAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	next := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	domain := "go"
	other := "sql"

	exported := deck.FromModels("backup", "go", []models.Card{
		{Prompt: "p1", Answer: "a1", Domain: &domain, EaseFactor: 2.62, IntervalMinutes: 1440, Repetitions: 2, NextReview: &next},
		{Prompt: "p2", Answer: "a2", Domain: &other, EaseFactor: 2.5},
	})
	assert.Empty(t, exported.Cards[0].Domain, "deck domain is not repeated per card")
	assert.Equal(t, "sql", exported.Cards[1].Domain)

	for _, path := range []string{"/out/backup.yaml", "/out/backup.json"} {
		t.Run(path, func(t *testing.T) {
			require.NoError(t, deck.Save(fs, path, exported))

			loaded, err := deck.Load(fs, path, 1<<20)
			require.NoError(t, err)
			require.Len(t, loaded.Cards, 2)
			assert.Equal(t, "go", loaded.Cards[0].Domain)
			require.NotNil(t, loaded.Cards[0].Schedule)
			assert.Equal(t, 1440, loaded.Cards[0].Schedule.IntervalMinutes)
			require.NotNil(t, loaded.Cards[0].Schedule.NextReview)
			assert.True(t, next.Equal(*loaded.Cards[0].Schedule.NextReview))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := deck.Load(afero.NewMemMapFs(), "/nope.yaml", 1024)
	assert.Error(t, err)
}
