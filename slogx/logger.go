// Package slogx builds [slog] loggers for the applications in this module.
package slogx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	ErrInvalidLevel  = errors.New("invalid log level")
	ErrInvalidFormat = errors.New("invalid log format")
)

// Format selects how log records are encoded.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	// FormatAuto uses text when writing to a terminal, and JSON otherwise.
	FormatAuto Format = "auto"
)

// ParseFormat validates a format name, ignoring case. An empty string is [FormatAuto].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatText, FormatJSON, FormatAuto:
		return f, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrInvalidFormat, s)
	}
}

// ParseLevel accepts the level names understood by [slog.Level.UnmarshalText], like "debug" or "warn+2".
// An empty string is [slog.LevelInfo].
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return level, nil
}

// NewHandler creates a text or JSON handler writing to out at the given level.
// With [FormatAuto], out is checked for being a terminal.
func NewHandler(out io.Writer, format Format, level slog.Leveler) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatAuto {
		format = FormatJSON
		if isTerminal(out) {
			format = FormatText
		}
	}
	switch format {
	case FormatText:
		return slog.NewTextHandler(out, opts), nil
	case FormatJSON:
		return slog.NewJSONHandler(out, opts), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidFormat, format)
	}
}

// NewLogger parses level and format names and returns a logger writing to out.
func NewLogger(out io.Writer, format, level string) (*slog.Logger, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	l, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	handler, err := NewHandler(out, f, l)
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
