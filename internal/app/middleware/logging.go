package middleware

import (
	"context"
	"log/slog"
	"time"

	"flatbook/internal/app/commands"
)

// CommandLogging logs each dispatched command with its outcome and latency.
func CommandLogging(logger *slog.Logger) CommandMiddleware {
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if logger == nil {
				return nextFn(ctx, cmd)
			}
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			if err != nil {
				logger.Warn("command failed", "command", cmd.Key(), "duration", time.Since(start), "error", err)
				return nil, err
			}
			logger.Debug("command handled", "command", cmd.Key(), "duration", time.Since(start))
			return res, nil
		})
	}
}
