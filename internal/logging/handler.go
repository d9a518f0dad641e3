// pattern: Imperative Shell

package logging

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapSlogHandler adapts zap.Logger to the slog.Handler interface.
// Groups are flattened into dotted field keys.
type zapSlogHandler struct {
	zap    *zap.Logger
	level  zapcore.Level
	fields []zap.Field
	prefix string
}

func (h *zapSlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogToZapLevel(level) >= h.level
}

func (h *zapSlogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, len(h.fields)+r.NumAttrs())
	fields = append(fields, h.fields...)
	r.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, h.field(attr))
		return true
	})

	if ce := h.zap.Check(slogToZapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, len(h.fields), len(h.fields)+len(attrs))
	copy(fields, h.fields)
	for _, attr := range attrs {
		fields = append(fields, h.field(attr))
	}
	return &zapSlogHandler{zap: h.zap, level: h.level, fields: fields, prefix: h.prefix}
}

func (h *zapSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &zapSlogHandler{zap: h.zap, level: h.level, fields: h.fields, prefix: h.prefix + name + "."}
}

func (h *zapSlogHandler) field(attr slog.Attr) zap.Field {
	key := h.prefix + attr.Key
	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return zap.String(key, value.String())
	case slog.KindInt64:
		return zap.Int64(key, value.Int64())
	case slog.KindBool:
		return zap.Bool(key, value.Bool())
	case slog.KindDuration:
		return zap.Duration(key, value.Duration())
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			return zap.NamedError(key, err)
		}
		if ss, ok := value.Any().([]string); ok {
			return zap.String(key, strings.Join(ss, " "))
		}
	}
	return zap.Any(key, value.Any())
}

func slogToZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
