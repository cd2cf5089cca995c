package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/applinks/internal/applinks"
	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/ganot/applinks/internal/registry"
	"github.com/ganot/applinks/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LinkResolver resolves incoming URLs.
type LinkResolver interface {
	HandleLink(ctx context.Context, raw string) resolution.Result
}

// DeferredRecoverer recovers a deferred link from the clipboard.
type DeferredRecoverer interface {
	RecoverDeferredLink(ctx context.Context) (*resolution.Result, error)
}

// LinkService creates and fetches shortened links.
type LinkService interface {
	CreateLink(ctx context.Context, req link.CreateRequest) (*link.Link, error)
	GetLink(ctx context.Context, id string) (*link.Link, error)
}

// StateResetter wipes durable SDK state.
type StateResetter interface {
	Reset(ctx context.Context) error
}

// Services contains everything the tools call into.
type Services struct {
	Resolver LinkResolver
	Recovery DeferredRecoverer
	Links    LinkService
	State    StateResetter
}

// ServicesFromSDK exposes one SDK instance through all tool services.
func ServicesFromSDK(sdk *applinks.SDK) Services {
	return Services{
		Resolver: sdk,
		Recovery: sdk,
		Links:    sdk.Shortener(),
		State:    sdk,
	}
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      transport.KeyResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "applinks",
		Version: registry.SDKVersion,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local-only and never authenticates.
	if cfg.TransportMode == "http" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(noAuthMiddleware("local"))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
