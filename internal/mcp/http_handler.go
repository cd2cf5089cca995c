package mcp

import (
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewHTTPHandler serves server over the streamable HTTP transport. Request
// headers reach the receiving middleware, so bearer auth applies per call.
func NewHTTPHandler(server *sdkmcp.Server, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	handler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		logger.Debug("mcp http request",
			"method", r.Method,
			"path", r.URL.Path,
			"session_id", r.Header.Get("Mcp-Session-Id"),
			"elapsed", time.Since(start),
		)
	})
}
