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
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestNewJSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Out: &buf, Level: "warn", JSON: true})

	log.Info().Msg("hidden")
	log.Warn().Str("owner", "vessel").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "vessel", line["owner"])
	assert.Contains(t, line, "time")
}

func TestNewConsoleWithFile(t *testing.T) {
	var out, file bytes.Buffer
	log := New(Options{Out: &out, File: &file, Level: "debug"})

	log.Debug().Msg("phase")
	assert.Contains(t, out.String(), "phase")
	assert.Contains(t, file.String(), "phase")
	assert.NotContains(t, file.String(), "\x1b[", "file copy has no colors")
}
