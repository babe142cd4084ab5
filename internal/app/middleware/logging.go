package middleware

import (
	"context"
	"log/slog"
	"time"

	"holidaze/internal/app/commands"
	"holidaze/internal/app/queries"
	"holidaze/internal/domain/booking"
)

// CommandLogging logs every dispatched command with its outcome.
func CommandLogging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		panic("middleware: logger required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			logOutcome(ctx, logger, "command", cmd.Key(), start, err)
			return res, err
		})
	}
}

// QueryLogging logs failed queries; successful reads are logged at debug.
func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		panic("middleware: logger required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := next.Ask(ctx, q)
			logOutcome(ctx, logger, "query", q.Key(), start, err)
			return res, err
		})
	}
}

func logOutcome(ctx context.Context, logger *slog.Logger, kind, key string, start time.Time, err error) {
	attrs := []any{kind, key, "duration", time.Since(start)}
	if err == nil {
		level := slog.LevelInfo
		if kind == "query" {
			level = slog.LevelDebug
		}
		logger.Log(ctx, level, kind+" handled", attrs...)
		return
	}
	attrs = append(attrs, "error", err, "kind", booking.KindOf(err))
	logger.Warn(kind+" failed", attrs...)
}
