package slogx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected slog.Level
		err      bool
	}{
		"Empty":      {input: "", expected: slog.LevelInfo},
		"Debug":      {input: "debug", expected: slog.LevelDebug},
		"Upper warn": {input: "WARN", expected: slog.LevelWarn},
		"Offset":     {input: "error+2", expected: slog.LevelError + 2},
		"Invalid":    {input: "loud", err: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.err {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	assert.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	f, err = ParseFormat("")
	assert.NoError(t, err)
	assert.Equal(t, FormatAuto, f)
	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNewLogger_AutoNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "auto", "info")
	require.NoError(t, err)
	log.Info("hello", "day", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`, "Non-terminal output should be JSON")
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(&buf, "text", "warn")
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewLogger_Invalid(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "yaml", "info")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = NewLogger(&bytes.Buffer{}, "text", "chatty")
	assert.ErrorIs(t, err, ErrInvalidLevel)
}
