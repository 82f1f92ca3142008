// Copyright (c) 2025 The TruStake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides the process wide structured logger.
// Packages obtain a contextual logger via WithContext and the process
// entry point selects the output handler and verbosity.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the leveled key/value logger handed out to packages.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

var (
	level   atomic.Int64
	backend atomic.Value // handlerBox
)

// handlerBox keeps atomic.Value stores consistently typed across the
// different slog handler implementations.
type handlerBox struct {
	h slog.Handler
}

func init() {
	level.Store(int64(slog.LevelInfo))
	backend.Store(handlerBox{slog.NewTextHandler(os.Stderr, nil)})
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) Debug(msg string, keyvals ...any) { l.inner.Debug(msg, keyvals...) }
func (l *logger) Info(msg string, keyvals ...any)  { l.inner.Info(msg, keyvals...) }
func (l *logger) Warn(msg string, keyvals ...any)  { l.inner.Warn(msg, keyvals...) }
func (l *logger) Error(msg string, keyvals ...any) { l.inner.Error(msg, keyvals...) }

func (l *logger) With(keyvals ...any) Logger {
	return &logger{inner: l.inner.With(keyvals...)}
}

// WithContext returns a logger carrying the given context pair,
// e.g. log.WithContext("pkg", "staker").
func WithContext(key, value string) Logger {
	return &logger{inner: slog.New(&dynamicHandler{}).With(key, value)}
}

// SetOutput directs all loggers to w using a text handler, including
// loggers created before the call.
func SetOutput(w io.Writer) {
	backend.Store(handlerBox{slog.NewTextHandler(w, nil)})
}

// SetJSONOutput directs all loggers to w using a JSON handler, including
// loggers created before the call.
func SetJSONOutput(w io.Writer) {
	backend.Store(handlerBox{slog.NewJSONHandler(w, nil)})
}

// SetVerbosity maps a 0..4 verbosity flag onto slog levels
// (0 error, 1 warn, 2 info, 3+ debug).
func SetVerbosity(v int) {
	switch {
	case v <= 0:
		level.Store(int64(slog.LevelError))
	case v == 1:
		level.Store(int64(slog.LevelWarn))
	case v == 2:
		level.Store(int64(slog.LevelInfo))
	default:
		level.Store(int64(slog.LevelDebug))
	}
}

// Discard silences all loggers. Used by tests.
func Discard() {
	backend.Store(handlerBox{slog.NewTextHandler(io.Discard, nil)})
}

// dynamicHandler resolves the backend handler and the level at log time,
// so package level loggers created at init pick up whatever the process
// entry point selects later. Accumulated WithAttrs/WithGroup calls are
// replayed onto the current backend per record.
type dynamicHandler struct {
	ops []func(slog.Handler) slog.Handler
}

func (h *dynamicHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	return int64(lvl) >= level.Load()
}

func (h *dynamicHandler) Handle(ctx context.Context, r slog.Record) error {
	next := backend.Load().(handlerBox).h
	for _, op := range h.ops {
		next = op(next)
	}
	return next.Handle(ctx, r)
}

func (h *dynamicHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.chain(func(next slog.Handler) slog.Handler {
		return next.WithAttrs(attrs)
	})
}

func (h *dynamicHandler) WithGroup(name string) slog.Handler {
	return h.chain(func(next slog.Handler) slog.Handler {
		return next.WithGroup(name)
	})
}

func (h *dynamicHandler) chain(op func(slog.Handler) slog.Handler) slog.Handler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(h.ops)+1)
	ops = append(ops, h.ops...)
	return &dynamicHandler{ops: append(ops, op)}
}
