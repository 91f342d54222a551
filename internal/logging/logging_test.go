package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/codex-platform/codex-cli/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "info", Format: config.LogFormatJSON}, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("role", "USER").Msg("refreshed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "refreshed", entry["message"])
	assert.Equal(t, "USER", entry["role"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewConsoleFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LogConfig{Level: "debug", Format: config.LogFormatConsole}, &buf)
	require.NoError(t, err)

	logger.Debug().Str("path", "/USER/problems").Msg("retrying")
	assert.Contains(t, buf.String(), "retrying")
	assert.Contains(t, buf.String(), "path=/USER/problems")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(config.LogConfig{Level: "loud", Format: config.LogFormatJSON}, &bytes.Buffer{})
	require.Error(t, err)
}
