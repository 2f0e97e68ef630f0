package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/conceptpulse/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("warning"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel("ERROR"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("bogus"))
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("shown %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 42")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestLogger_JSONFieldsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithJSON(true), logger.WithLevel(logger.DEBUG)).
		WithPrefix("card_repo").
		WithFields(map[string]any{"card_id": 7}).
		WithField("quality", 2)

	log.Info("review applied")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "review applied", line["msg"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "card_repo", line["component"])
	assert.EqualValues(t, 7, line["card_id"])
	assert.EqualValues(t, 2, line["quality"])
	assert.Contains(t, line["caller"], "logger_test.go")
}

func TestLogger_WithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := logger.New(logger.WithOutput(&buf), logger.WithJSON(true))
	_ = base.WithField("request_id", "abc")

	base.Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))

	l := logger.New()
	ctx := logger.NewContext(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
}
