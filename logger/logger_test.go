package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{Level: "debug", Format: "json"})
	require.NoError(t, err)

	l.Debug("og rendered", slog.String("handle", "yoginth.lens"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "og rendered", entry["msg"])
	assert.Equal(t, "yoginth.lens", entry["handle"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{Level: "WARN", Format: "logfmt"})
	require.NoError(t, err)

	l.Info("hidden")
	assert.Empty(t, buf.String())
	l.Warn("shown", slog.Int("n", 2))
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "n=2")
}

func TestNew_BadConfig(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Config{Level: "loud"})
	require.Error(t, err)
	_, err = New(&bytes.Buffer{}, Config{Format: "xml"})
	require.Error(t, err)
}
