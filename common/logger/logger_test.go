package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in, slog.LevelWarn), tt.in)
	}
}

func TestNewWithWriter_JSONInProd(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Info("registration stored", "category", "scout")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "registration stored", entry["msg"])
	assert.Equal(t, "scout", entry["category"])
}

func TestNewWithWriter_ColorsErrorsLocally(t *testing.T) {
	t.Setenv("ENV", "local")

	var buf bytes.Buffer
	log := NewWithWriter(&buf)
	log.Error("render failed")
	log.Info("plain")

	out := buf.String()
	// the text handler quotes the escape sequence
	assert.Contains(t, out, `\x1b[31mrender failed\x1b[0m`)
	assert.Contains(t, out, "msg=plain")
}
