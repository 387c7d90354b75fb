// Scrollforge - Engagement Engine for Infinite-Scroll Content Feeds
// Copyright 2026 M. Vail (mvail)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mvail/scrollforge

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// NewSlogLogger returns a *slog.Logger whose records are written through
// the given zerolog logger. Used for libraries that speak slog, such as
// the supervisor's event hook.
func NewSlogLogger(logger zerolog.Logger) *slog.Logger {
	return slog.New(&slogBridge{logger: logger})
}

// slogBridge adapts zerolog to the slog.Handler interface.
type slogBridge struct {
	logger zerolog.Logger
	group  string
}

func (b *slogBridge) Enabled(_ context.Context, level slog.Level) bool {
	return zerologLevel(level) >= b.logger.GetLevel()
}

func (b *slogBridge) Handle(_ context.Context, record slog.Record) error {
	event := b.logger.WithLevel(zerologLevel(record.Level))
	record.Attrs(func(attr slog.Attr) bool {
		event = event.Interface(b.key(attr.Key), attr.Value.Any())
		return true
	})
	event.Msg(record.Message)
	return nil
}

func (b *slogBridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	ctx := b.logger.With()
	for _, attr := range attrs {
		ctx = ctx.Interface(b.key(attr.Key), attr.Value.Any())
	}
	return &slogBridge{logger: ctx.Logger(), group: b.group}
}

func (b *slogBridge) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	group := name
	if b.group != "" {
		group = b.group + "." + name
	}
	return &slogBridge{logger: b.logger, group: group}
}

func (b *slogBridge) key(k string) string {
	if b.group == "" {
		return k
	}
	return b.group + "." + k
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
