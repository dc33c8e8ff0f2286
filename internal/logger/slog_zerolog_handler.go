package logger

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// slogBridge feeds slog records into a zerolog logger so internal packages
// can depend on a plain *slog.Logger while output stays on the zerolog
// pipeline.
type slogBridge struct {
	out    *zerolog.Logger
	prefix string
	preset []slog.Attr
}

// NewSlog wraps the zerolog logger in the slog API.
func NewSlog(zl *zerolog.Logger) *slog.Logger {
	return slog.New(&slogBridge{out: zl})
}

// Level filtering is left to zerolog's global level.
func (h *slogBridge) Enabled(context.Context, slog.Level) bool { return true }

func (h *slogBridge) Handle(ctx context.Context, r slog.Record) error {
	ev := h.eventFor(ctx, r.Level)
	for _, a := range h.preset {
		ev = appendAttr(ev, h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, h.prefix, a)
		return true
	})
	ev.Msg(r.Message)
	return nil
}

func (h *slogBridge) eventFor(ctx context.Context, lvl slog.Level) *zerolog.Event {
	base := FromContext(ctx, h.out)
	switch {
	case lvl <= slog.LevelDebug:
		return base.Debug()
	case lvl >= slog.LevelError:
		return base.Error()
	case lvl >= slog.LevelWarn:
		return base.Warn()
	default:
		return base.Info()
	}
}

func (h *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.preset = append(append([]slog.Attr(nil), h.preset...), attrs...)
	return &cp
}

// WithGroup turns the group name into a dotted key prefix on everything
// logged through the child handler.
func (h *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func appendAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	key := prefix + a.Key
	switch a.Value.Kind() {
	case slog.KindString:
		return ev.Str(key, a.Value.String())
	case slog.KindInt64:
		return ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return ev.Dur(key, a.Value.Duration())
	case slog.KindTime:
		return ev.Time(key, a.Value.Time())
	default:
		return ev.Interface(key, a.Value.Any())
	}
}
