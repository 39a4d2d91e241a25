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
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"invalid": zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "replay")

	log.Debug().Msg("hidden")
	log.Info().Str("run", "r1").Msg("started")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "replay", line["component"])
	assert.Equal(t, "r1", line["run"])
	assert.Equal(t, "started", line["message"])
	assert.NotContains(t, buf.String(), "hidden")
}
