package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type accountKey struct{}

// KeyResolver resolves an account ID from a bearer API key.
type KeyResolver interface {
	ResolveAccount(ctx context.Context, key string) (string, error)
}

// StaticKeys maps API keys to account IDs.
type StaticKeys map[string]string

// ResolveAccount implements KeyResolver.
func (k StaticKeys) ResolveAccount(_ context.Context, key string) (string, error) {
	account, ok := k[key]
	if !ok || account == "" {
		return "", ErrUnauthorized
	}
	return account, nil
}

// AccountFromContext returns the account ID from context, if present.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(accountKey{}).(string)
	return account, ok
}

// AuthMiddleware enforces bearer API key authentication.
func AuthMiddleware(resolver KeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			key := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if key == "" {
				WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			account, err := resolver.ResolveAccount(r.Context(), key)
			if err != nil || account == "" {
				WriteError(w, http.StatusUnauthorized, "invalid bearer token")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey{}, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
