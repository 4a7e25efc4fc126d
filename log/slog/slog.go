// Package slog adapts a log/slog Logger to lrucache.Logger.
package slog

import (
	"context"
	stdslog "log/slog"

	"github.com/unkn0wn-root/lrucache"
)

var _ lrucache.Logger = Logger{}

type Logger struct{ L *stdslog.Logger }

func New(l *stdslog.Logger) Logger {
	return Logger{L: l.With("component", "lrucache")}
}

func (s Logger) Debug(msg string, f lrucache.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f lrucache.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f lrucache.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f lrucache.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(level stdslog.Level, msg string, f lrucache.Fields) {
	ctx := context.Background()
	if !s.L.Enabled(ctx, level) {
		return
	}
	attrs := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		attrs = append(attrs, stdslog.Any(k, v))
	}
	s.L.LogAttrs(ctx, level, msg, attrs...)
}
