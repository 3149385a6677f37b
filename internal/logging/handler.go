package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler wraps a slog.Handler that can be atomically replaced at runtime.
// Handlers derived through WithAttrs or WithGroup share the swap target, so loggers
// created before an upgrade (such as a scanner's child logger) follow it.
type SwappableHandler struct {
	root *atomic.Pointer[slog.Handler]
	// derive replays the WithAttrs/WithGroup calls made on this handler's ancestors.
	derive []func(slog.Handler) slog.Handler
}

// NewSwappableHandler creates a handler with an initial handler.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	sh := &SwappableHandler{root: new(atomic.Pointer[slog.Handler])}
	sh.root.Store(&initial)
	return sh
}

// Swap atomically replaces the underlying handler of sh and every handler derived
// from it.
func (sh *SwappableHandler) Swap(newHandler slog.Handler) {
	sh.root.Store(&newHandler)
}

func (sh *SwappableHandler) current() slog.Handler {
	h := *sh.root.Load()
	for _, fn := range sh.derive {
		h = fn(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return sh.current().Enabled(ctx, level)
}

// Handle handles the Record.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a SwappableHandler that adds attrs to whatever handler is current.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a SwappableHandler that opens group name on whatever handler is
// current.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) with(fn func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(sh.derive), len(sh.derive)+1)
	copy(derive, sh.derive)
	return &SwappableHandler{root: sh.root, derive: append(derive, fn)}
}
