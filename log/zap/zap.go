// Package zap adapts a zap.Logger to lrucache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/lrucache"
)

type Logger struct{ L *zap.Logger }

var _ lrucache.Logger = Logger{}

func New(l *zap.Logger) Logger {
	return Logger{L: l.Named("lrucache")}
}

func (z Logger) Debug(msg string, f lrucache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f lrucache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f lrucache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f lrucache.Fields) { z.L.Error(msg, fields(f)...) }

// fields is sorted by key so output is stable.
func fields(f lrucache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
