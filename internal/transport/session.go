package transport

import (
	"context"
	"net/http"
)

type clientKey struct{}

// ClientInfo identifies the SDK that issued a request.
type ClientInfo struct {
	Name      string
	Version   string
	UserAgent string
}

// ClientFromContext returns the client info from context, if present.
func ClientFromContext(ctx context.Context) (ClientInfo, bool) {
	info, ok := ctx.Value(clientKey{}).(ClientInfo)
	return info, ok
}

// ClientInfoMiddleware extracts the X-AppLinks-SDK-* headers into context.
func ClientInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := ClientInfo{
			Name:      r.Header.Get("X-AppLinks-SDK-Name"),
			Version:   r.Header.Get("X-AppLinks-SDK-Version"),
			UserAgent: r.UserAgent(),
		}
		ctx := context.WithValue(r.Context(), clientKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
