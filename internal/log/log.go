// Package log builds the slog loggers used by winrm-run.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// New returns a text logger writing to w through a RedactingHandler.
// An empty level returns a logger that discards everything.
func New(w io.Writer, level string) (*slog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		return Discard(), nil
	}

	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(NewRedactingHandler(handler)), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: want debug, info, warn or error", s)
	}
	return lvl, nil
}
