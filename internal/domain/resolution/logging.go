package resolution

import (
	"context"
	"log/slog"
	"net/url"
	"time"
)

// LoggingMiddleware records the start, duration and outcome of a traversal.
// It never alters the context or the result.
type LoggingMiddleware struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewLoggingMiddleware creates a logging stage.
func NewLoggingMiddleware(logger *slog.Logger) *LoggingMiddleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingMiddleware{logger: logger, now: time.Now}
}

func (m *LoggingMiddleware) Process(ctx context.Context, u *url.URL, lc LinkContext, next Next) (Result, error) {
	start := m.now()
	m.logger.DebugContext(ctx, "link processing started", "url", u.String(), "first_launch", lc.IsFirstLaunch, "launched_at", lc.LaunchTimestamp)

	result, err := next(ctx, u, lc)
	duration := m.now().Sub(start)
	if err != nil {
		m.logger.ErrorContext(ctx, "link processing failed", "url", u.String(), "duration", duration, "error", err)
		return result, err
	}

	if result.Handled {
		m.logger.DebugContext(ctx, "link handled", "url", u.String(), "path", result.Path, "duration", duration, "metadata_keys", len(result.Metadata))
	} else {
		m.logger.DebugContext(ctx, "link not handled", "url", u.String(), "duration", duration)
	}
	return result, nil
}
