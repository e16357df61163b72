package log

import (
	"context"
	"log/slog"
)

type attrSliceContextKey struct{}

func attrSliceFromContext(ctx context.Context) []slog.Attr {
	if v := ctx.Value(attrSliceContextKey{}); v != nil {
		return v.([]slog.Attr)
	}
	return nil
}

// ContextWithAttrs attaches attrs to the context so they are included in
// every log entry emitted with that context. The orchestrator uses this
// to stamp the analyzed path on all detector logs.
func ContextWithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	if len(attr) == 0 {
		return ctx
	}
	attrSlice := append(attrSliceFromContext(ctx), attr...)
	return context.WithValue(ctx, attrSliceContextKey{}, attrSlice)
}

type contextLogHandler struct {
	handler slog.Handler
}

// NewContextLogHandler wraps a handler so that attrs stored in the log
// context (via ContextWithAttrs) are added to each record.
func NewContextLogHandler(handler slog.Handler) slog.Handler {
	return &contextLogHandler{handler: handler}
}

func (h *contextLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrSlice := attrSliceFromContext(ctx); len(attrSlice) > 0 {
		r.AddAttrs(attrSlice...)
	}
	return h.handler.Handle(ctx, r)
}

func (h *contextLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextLogHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *contextLogHandler) WithGroup(name string) slog.Handler {
	return &contextLogHandler{handler: h.handler.WithGroup(name)}
}

func (h *contextLogHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.handler.Enabled(ctx, l)
}
