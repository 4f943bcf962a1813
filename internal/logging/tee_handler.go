package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler pairs the console handler with the run log file. Each side keeps
// its own level, so the run log can hold info records while the console only
// shows warnings.
type teeHandler struct {
	console slog.Handler
	runLog  slog.Handler
}

func newTeeHandler(console, runLog slog.Handler) slog.Handler {
	switch {
	case console == nil && runLog == nil:
		return nopHandler{}
	case runLog == nil:
		return console
	case console == nil:
		return runLog
	}
	return &teeHandler{console: console, runLog: runLog}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.console.Enabled(ctx, level) || h.runLog.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	if h.console.Enabled(ctx, record.Level) {
		errs = append(errs, h.console.Handle(ctx, record.Clone()))
	}
	if h.runLog.Enabled(ctx, record.Level) {
		errs = append(errs, h.runLog.Handle(ctx, record))
	}
	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{console: h.console.WithAttrs(attrs), runLog: h.runLog.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{console: h.console.WithGroup(name), runLog: h.runLog.WithGroup(name)}
}
