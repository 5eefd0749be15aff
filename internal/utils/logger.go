package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Logger owns the structured logger and the optional log file behind it.
type Logger struct {
	*slog.Logger
	file *os.File
}

// NewLogger creates a logger writing to stderr and, when filePath is set,
// appending to that file as well. Terminals get the text handler, pipes get JSON.
func NewLogger(level, filePath string) (*Logger, error) {
	var out io.Writer = os.Stderr
	var file *os.File
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		out = io.MultiWriter(os.Stderr, f)
	}

	options := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if file == nil && term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(out, options)
	} else {
		handler = slog.NewJSONHandler(out, options)
	}

	return &Logger{Logger: slog.New(handler), file: file}, nil
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a config string to a slog level; unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Close closes the log file
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}
