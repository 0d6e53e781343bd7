package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")

	log.Info().Msg("hidden")
	l := Component("poller")
	l.Warn().Int("rounds", 3).Msg("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "poller", entry["component"])
	assert.Equal(t, "visible", entry["message"])
	assert.EqualValues(t, 3, entry["rounds"])
}

func TestSetupWriterUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "chatty", "json")

	log.Debug().Msg("debug")
	assert.Empty(t, buf.String())

	log.Info().Msg("info")
	assert.Contains(t, buf.String(), `"message":"info"`)
}
