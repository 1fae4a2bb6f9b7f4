// Package zerologadapters provides a zerolog implementation of the inventory logging interfaces.
package zerologadapters

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
)

// Logger implements inventory.Logger and inventory.ContextualLogger on a zerolog.Logger.
// Arguments are slog-style key-value pairs and become zerolog fields.
//
// The contextual methods prefer the logger stored in ctx with zerolog's WithContext,
// so request-scoped fields like a trace id are kept.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger wraps logger.
func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.write(l.logger.Debug(), msg, args) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.write(l.logger.Info(), msg, args) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.write(l.logger.Warn(), msg, args) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.write(l.logger.Error(), msg, args) }

// DebugContext logs at debug level with the logger of ctx.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.write(l.from(ctx).Debug().Ctx(ctx), msg, args)
}

// InfoContext logs at info level with the logger of ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.write(l.from(ctx).Info().Ctx(ctx), msg, args)
}

// WarnContext logs at warn level with the logger of ctx.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.write(l.from(ctx).Warn().Ctx(ctx), msg, args)
}

// ErrorContext logs at error level with the logger of ctx.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.write(l.from(ctx).Error().Ctx(ctx), msg, args)
}

// from returns the logger attached to ctx, or the wrapped logger if there is none.
func (l *Logger) from(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger != nil && ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}

	return &l.logger
}

func (l *Logger) write(event *zerolog.Event, msg string, args []any) {
	if event == nil {
		return
	}

	event.Fields(args).Msg(msg)
}

var (
	_ inventory.Logger           = (*Logger)(nil)
	_ inventory.ContextualLogger = (*Logger)(nil)
)
