package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganot/applinks/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const accountIDKey contextKey = iota

// getAccountID extracts the authenticated account from context.
func getAccountID(ctx context.Context) string {
	v, _ := ctx.Value(accountIDKey).(string)
	return v
}

// authMiddleware implements bearer key authentication as MCP middleware.
func authMiddleware(resolver transport.KeyResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("%w: missing headers", transport.ErrUnauthorized)
			}

			auth := extra.Header.Get("Authorization")
			key := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if key == "" {
				return nil, fmt.Errorf("%w: missing bearer token", transport.ErrUnauthorized)
			}

			account, err := resolver.ResolveAccount(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", transport.ErrUnauthorized, err)
			}
			if account == "" {
				return nil, fmt.Errorf("%w: invalid bearer token", transport.ErrUnauthorized)
			}

			ctx = context.WithValue(ctx, accountIDKey, account)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware injects a fixed account when auth is disabled.
func noAuthMiddleware(account string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, accountIDKey, account)
			return next(ctx, method, req)
		}
	}
}
