package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/applinks/internal/domain/link"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	if svc.Resolver != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "resolve_link",
			Description: "Resolve a custom scheme or universal link into an in-app path, params and metadata",
		}, resolveLinkHandler(svc.Resolver))
	}

	if svc.Links != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "create_link",
			Description: "Create a shortened link under a verified domain",
		}, createLinkHandler(svc.Links))
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "get_link",
			Description: "Fetch a shortened link by id",
		}, getLinkHandler(svc.Links))
	}

	if svc.Recovery != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "recover_deferred_link",
			Description: "Read the clipboard and resolve a deferred deep link left by the landing page",
		}, recoverDeferredLinkHandler(svc.Recovery))
	}

	if svc.State != nil {
		sdkmcp.AddTool(server, &sdkmcp.Tool{
			Name:        "reset_state",
			Description: "Forget processed visit ids and the first-launch flag",
		}, resetStateHandler(svc.State, logger))
	}
}

func resolveLinkHandler(resolver LinkResolver) sdkmcp.ToolHandlerFor[ResolveLinkParams, ResolutionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ResolveLinkParams) (*sdkmcp.CallToolResult, ResolutionResult, error) {
		raw := strings.TrimSpace(in.URL)
		if raw == "" {
			return nil, ResolutionResult{}, &APIError{Code: "INVALID_INPUT", Message: "url is required"}
		}
		return nil, toResolutionResult(resolver.HandleLink(ctx, raw)), nil
	}
}

func createLinkHandler(links LinkService) sdkmcp.ToolHandlerFor[CreateLinkParams, LinkResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateLinkParams) (*sdkmcp.CallToolResult, LinkResult, error) {
		req := link.CreateRequest{
			Domain:         strings.TrimSpace(in.Domain),
			Title:          in.Title,
			DeepLinkPath:   in.DeepLinkPath,
			OriginalURL:    in.OriginalURL,
			DeepLinkParams: in.DeepLinkParams,
			PathType:       link.PathType(strings.ToUpper(strings.TrimSpace(in.PathType))),
		}
		if in.ExpiresAt != "" {
			at, err := time.Parse(time.RFC3339, in.ExpiresAt)
			if err != nil {
				return nil, LinkResult{}, &APIError{
					Code:         "INVALID_INPUT",
					Message:      fmt.Sprintf("invalid expires_at %q", in.ExpiresAt),
					RecoveryHint: "Use RFC 3339, e.g. 2026-12-31T23:59:59Z",
				}
			}
			req.ExpiresAt = &at
		}

		created, err := links.CreateLink(ctx, req)
		if err != nil {
			return nil, LinkResult{}, MapError(err)
		}
		return nil, toLinkResult(created), nil
	}
}

func getLinkHandler(links LinkService) sdkmcp.ToolHandlerFor[GetLinkParams, LinkResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetLinkParams) (*sdkmcp.CallToolResult, LinkResult, error) {
		got, err := links.GetLink(ctx, strings.TrimSpace(in.ID))
		if err != nil {
			return nil, LinkResult{}, MapError(err)
		}
		return nil, toLinkResult(got), nil
	}
}

func recoverDeferredLinkHandler(recoverer DeferredRecoverer) sdkmcp.ToolHandlerFor[RecoverDeferredLinkParams, RecoverDeferredLinkResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ RecoverDeferredLinkParams) (*sdkmcp.CallToolResult, RecoverDeferredLinkResult, error) {
		result, err := recoverer.RecoverDeferredLink(ctx)
		if err != nil {
			return nil, RecoverDeferredLinkResult{}, MapError(err)
		}
		if result == nil {
			return nil, RecoverDeferredLinkResult{Found: false}, nil
		}
		res := toResolutionResult(*result)
		return nil, RecoverDeferredLinkResult{Found: true, Resolution: &res}, nil
	}
}

func resetStateHandler(state StateResetter, logger *slog.Logger) sdkmcp.ToolHandlerFor[ResetStateParams, ResetStateResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ResetStateParams) (*sdkmcp.CallToolResult, ResetStateResult, error) {
		if err := state.Reset(ctx); err != nil {
			logger.Warn("reset_state failed", "error", err)
			return nil, ResetStateResult{}, MapError(err)
		}
		return nil, ResetStateResult{Reset: true}, nil
	}
}
