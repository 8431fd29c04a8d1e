package slogx

import (
	"context"
	"errors"
	"log/slog"
)

var _ slog.Handler = (*handlerJoiner)(nil)

type handlerJoiner struct {
	handlers []slog.Handler
}

func (h *handlerJoiner) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes the record to every handler that accepts its level, joining any errors.
func (h *handlerJoiner) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *handlerJoiner) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(handler slog.Handler) slog.Handler {
		return handler.WithAttrs(attrs)
	})
}

func (h *handlerJoiner) WithGroup(name string) slog.Handler {
	return h.each(func(handler slog.Handler) slog.Handler {
		return handler.WithGroup(name)
	})
}

func (h *handlerJoiner) each(fn func(slog.Handler) slog.Handler) *handlerJoiner {
	cp := &handlerJoiner{handlers: make([]slog.Handler, len(h.handlers))}
	for i, handler := range h.handlers {
		cp.handlers[i] = fn(handler)
	}
	return cp
}

// MergeHandlers will merge many [slog.Handler] into one, so each record is written to all of them.
// Each handler keeps its own level filter.
func MergeHandlers(a, b slog.Handler, others ...slog.Handler) slog.Handler {
	handlers := make([]slog.Handler, 0, 2+len(others))
	handlers = append(handlers, a, b)
	handlers = append(handlers, others...)
	return &handlerJoiner{handlers: handlers}
}
