// Package logbridge forwards slog records to a logrus logger, so library
// output lands in the binary's log sink.
package logbridge

import (
	"context"
	"log/slog"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	l      *logrus.Logger
	fields logrus.Fields
	prefix string
}

var _ slog.Handler = (*Handler)(nil)

func New(l *logrus.Logger) *Handler {
	return &Handler{l: l, fields: logrus.Fields{}}
}

func level(l slog.Level) logrus.Level {
	switch {
	case l >= slog.LevelError:
		return logrus.ErrorLevel
	case l >= slog.LevelWarn:
		return logrus.WarnLevel
	case l >= slog.LevelInfo:
		return logrus.InfoLevel
	}
	return logrus.DebugLevel
}

func (h *Handler) Enabled(_ context.Context, l slog.Level) bool {
	return h.l.IsLevelEnabled(level(l))
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(logrus.Fields, len(h.fields)+r.NumAttrs())
	for k, v := range h.fields {
		fields[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		add(fields, h.prefix, a)
		return true
	})
	e := h.l.WithFields(fields)
	if !r.Time.IsZero() {
		e = e.WithTime(r.Time)
	}
	e.Log(level(r.Level), r.Message)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make(logrus.Fields, len(h.fields)+len(attrs))
	for k, v := range h.fields {
		fields[k] = v
	}
	for _, a := range attrs {
		add(fields, h.prefix, a)
	}
	return &Handler{l: h.l, fields: fields, prefix: h.prefix}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{l: h.l, fields: h.fields, prefix: h.prefix + name + "."}
}

func add(fields logrus.Fields, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range v.Group() {
			add(fields, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	fields[prefix+a.Key] = v.Any()
}
