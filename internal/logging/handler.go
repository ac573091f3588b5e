package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
)

// swapHandler forwards to a slog.Handler that can be replaced at runtime, so
// loggers handed out during bootstrap keep working after Upgrade.
type swapHandler struct {
	inner atomic.Pointer[slog.Handler]
}

func newSwapHandler(initial slog.Handler) *swapHandler {
	h := &swapHandler{}
	h.inner.Store(&initial)
	return h
}

func (h *swapHandler) swap(next slog.Handler) {
	h.inner.Store(&next)
}

func (h *swapHandler) load() slog.Handler {
	return *h.inner.Load()
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.load().Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.load().Handle(ctx, r)
}

// WithAttrs and WithGroup bind to the handler current at call time. Child
// loggers created before Upgrade therefore keep their bootstrap output.
func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newSwapHandler(h.load().WithAttrs(attrs))
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	return newSwapHandler(h.load().WithGroup(name))
}

// RedactedValue replaces the value of any sensitive attribute.
const RedactedValue = "[REDACTED]"

// sensitiveKeys lists attribute keys whose values must never reach a log sink.
var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"token":         true,
	"credential":    true,
	"authorization": true,
}

// redactAttr is a slog ReplaceAttr hook that masks sensitive attributes.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, RedactedValue)
	}
	return a
}
