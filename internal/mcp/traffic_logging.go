package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const maxLoggedPayload = 2048

// trafficLoggingMiddleware logs every request and response at debug level.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			log := logger.With(
				"direction", direction,
				"method", method,
				"session_id", safeSessionID(req),
				"account_id", getAccountID(ctx),
			)
			log.Debug("mcp traffic", "stage", "request", "params", formatPayload(safeParams(req)))

			start := time.Now()
			result, err := next(ctx, method, req)
			if strings.HasPrefix(method, "notifications/") {
				return result, err
			}

			attrs := []any{"stage", "response", "elapsed", time.Since(start), "result", formatPayload(result)}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			log.Debug("mcp traffic", attrs...)
			return result, err
		}
	}
}

// Some requests carry typed-nil sessions or params; the accessors panic on them.
func safeSessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	if len(data) > maxLoggedPayload {
		return string(data[:maxLoggedPayload]) + "...(truncated)"
	}
	return string(data)
}
