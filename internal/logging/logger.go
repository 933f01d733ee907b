// Package logging builds the slog loggers shared by the server and CLI.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/KaramelBytes/luxboard/internal/analysis"
)

// ParseLevel maps debug, info, warn and error onto slog levels. Empty is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log level: %s (use debug, info, warn or error)", s)
}

// New returns a text or JSON logger writing to w.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format: %s (use text or json)", format)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Err logs err at the given level with the context carried by upload errors as attributes.
func Err(ctx context.Context, l *slog.Logger, level slog.Level, msg string, err error) {
	if l == nil || !l.Enabled(ctx, level) {
		return
	}
	a := append([]slog.Attr{slog.String("error", err.Error())}, attrs(err)...)
	l.LogAttrs(ctx, level, msg, a...)
}

// Additional error attributes for slog.
func attrs(err error) []slog.Attr {
	var (
		ie *analysis.IngestionError
		ne *analysis.NormalizationError
		te *analysis.TypeError
	)
	switch {
	case errors.As(err, &ie):
		a := []slog.Attr{slog.String("stage", "ingest"), slog.String("source", ie.Source)}
		if ie.Line > 0 {
			a = append(a, slog.Int("line", ie.Line))
		}
		return a
	case errors.As(err, &ne):
		a := []slog.Attr{slog.String("stage", "normalize"), slog.String("column", ne.Column)}
		if ne.Row > 0 {
			a = append(a, slog.Int("row", ne.Row), slog.String("value", ne.Value))
		}
		return a
	case errors.As(err, &te):
		a := []slog.Attr{slog.String("stage", "analyze"), slog.String("column", te.Column)}
		if te.Row > 0 {
			a = append(a, slog.Int("row", te.Row), slog.String("value", te.Value))
		}
		return a
	}
	return nil
}
