package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	arena := Component(logger, "arena")
	arena.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	arena = Component(logger, "arena")
	arena.Warn().Int("game", 3).Msg("forfeit")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "arena", entry["component"])
	require.Equal(t, "forfeit", entry["message"])
	require.EqualValues(t, 3, entry["game"])
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "console"}, &buf)
	require.NoError(t, err)
	logger.Info().Msg("listening")
	require.Contains(t, buf.String(), "listening")
}

func TestBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"}, nil)
	require.Error(t, err)
}
