package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))

	t.Setenv(EnvLevel, "warn")
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("debug"))
}

func TestNew_JSON(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	logger := New(Config{App: "conceptd", Level: "info", Out: &buf})
	logger.Debug().Msg("hidden")
	logger.Info().Str("tx", "t1").Msg("shown")

	var ev map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev))
	assert.Equal(t, "conceptd", ev["app"])
	assert.Equal(t, "t1", ev["tx"])
	assert.Equal(t, "shown", ev["message"])
}
