package resolution

import (
	"context"
	"net/url"
	"strings"

	"github.com/ganot/applinks/internal/metadata"
)

// SchemeMiddleware parses custom-scheme links into a path and params.
type SchemeMiddleware struct {
	matcher *SchemeMatcher
}

// NewSchemeMiddleware creates a scheme stage for the given schemes.
func NewSchemeMiddleware(schemes []string) *SchemeMiddleware {
	return &SchemeMiddleware{matcher: NewSchemeMatcher(schemes)}
}

func (m *SchemeMiddleware) Process(ctx context.Context, u *url.URL, lc LinkContext, next Next) (Result, error) {
	if !m.matcher.Matches(u) {
		return next(ctx, u, lc)
	}

	enriched := lc.Clone()
	if path := SchemePath(u); path != "" {
		enriched.DeepLinkPath = path
	}

	for key, value := range queryParams(u.RawQuery) {
		if key == VisitIDKey {
			enriched.AdditionalData[VisitIDKey] = metadata.String(value)
			continue
		}
		enriched.DeepLinkParams[key] = value
	}
	return next(ctx, u, enriched)
}

// queryParams splits a raw query on "&" only, so ";" stays inside values and
// "+" is kept literally. Later duplicates overwrite earlier ones.
func queryParams(rawQuery string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescapeComponent(key)
		if key == "" {
			continue
		}
		params[key] = unescapeComponent(value)
	}
	return params
}

func unescapeComponent(s string) string {
	if out, err := url.PathUnescape(s); err == nil {
		return out
	}
	return s
}

// SchemePath builds "/" + host + non-empty path segments for a custom-scheme URL.
func SchemePath(u *url.URL) string {
	var parts []string
	if host := u.Hostname(); host != "" {
		parts = append(parts, host)
	} else if u.Opaque != "" {
		parts = append(parts, strings.Split(u.Opaque, "/")...)
	}
	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			parts = append(parts, segment)
		}
	}
	filtered := parts[:0]
	for _, p := range parts {
		if p != "" {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	return "/" + strings.Join(filtered, "/")
}
