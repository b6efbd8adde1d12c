package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a JSON logger on stderr at level, fanned out to any extra
// handlers, and installs it as the slog default. Extra handlers only see
// records at level or above, whatever their own setting.
func New(level string, extra ...slog.Handler) *slog.Logger {
	return newLogger(os.Stderr, level, extra...)
}

func newLogger(w io.Writer, level string, extra ...slog.Handler) *slog.Logger {
	lvl := ParseLevel(level)
	handlers := []slog.Handler{slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})}
	for _, h := range extra {
		if h != nil {
			handlers = append(handlers, atLeast{Handler: h, level: lvl})
		}
	}
	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = Fanout(handlers)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Fanout sends each record to every handler that accepts its level.
type Fanout []slog.Handler

func (f Fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f Fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f Fanout) WithGroup(name string) slog.Handler {
	out := make(Fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// atLeast drops records below level before they reach the wrapped handler.
type atLeast struct {
	slog.Handler
	level slog.Level
}

func (a atLeast) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= a.level && a.Handler.Enabled(ctx, l)
}

func (a atLeast) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < a.level {
		return nil
	}
	return a.Handler.Handle(ctx, r)
}

func (a atLeast) WithAttrs(attrs []slog.Attr) slog.Handler {
	return atLeast{Handler: a.Handler.WithAttrs(attrs), level: a.level}
}

func (a atLeast) WithGroup(name string) slog.Handler {
	return atLeast{Handler: a.Handler.WithGroup(name), level: a.level}
}
