package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ganot/applinks/internal/mcp"
	"github.com/ganot/applinks/internal/transport"
)

func mcpCmd(a *app) *cobra.Command {
	var (
		addr    string
		tokens  []string
		source  string
		content string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the applinks tools over MCP",
		Long: `Serve resolve_link, create_link, get_link, recover_deferred_link and
reset_state to MCP clients. Stdio by default; --http serves the streamable
HTTP transport, authenticated with --token when given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clip, err := openClipboard(source, content)
			if err != nil {
				a.logger.Warn("clipboard unavailable, recovery disabled", "error", err)
			}
			sdk, err := a.openSDK(clip)
			if err != nil {
				return err
			}

			keys := transport.StaticKeys{}
			for _, token := range tokens {
				keys[token] = "mcp"
			}

			mode := "stdio"
			if addr != "" {
				mode = "http"
			}
			server := mcp.NewServer(mcp.Config{
				Services:      mcp.ServicesFromSDK(sdk),
				Resolver:      keys,
				AuthEnabled:   len(keys) > 0,
				TransportMode: mode,
				Logger:        a.logger,
			})

			if mode == "stdio" {
				a.logger.Info("starting stdio transport", "auth", "disabled")
				return server.Run(cmd.Context(), &sdkmcp.StdioTransport{})
			}
			return serveMCPHTTP(cmd.Context(), a, server, addr, len(keys) > 0)
		},
	}

	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio")
	cmd.Flags().StringArrayVar(&tokens, "token", nil, "bearer token accepted over HTTP (repeatable)")
	cmd.Flags().StringVar(&source, "clipboard", "system", "clipboard source: system or memory")
	cmd.Flags().StringVar(&content, "content", "", "clipboard content when --clipboard=memory")
	return cmd
}

func serveMCPHTTP(ctx context.Context, a *app, server *sdkmcp.Server, addr string, auth bool) error {
	router := transport.NewRouter()
	handler := mcp.NewHTTPHandler(server, a.logger)
	router.Handle("/mcp", handler)
	router.Handle("/mcp/*", handler)

	a.logger.Info("mcp server listening", "addr", addr, "auth", auth)
	return serveHTTP(ctx, a, &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second})
}

// serveHTTP runs srv until ctx is cancelled, then shuts it down.
func serveHTTP(ctx context.Context, a *app, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
