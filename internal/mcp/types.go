package mcp

import (
	"time"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/ganot/applinks/internal/metadata"
)

type ResolveLinkParams struct {
	URL string `json:"url" jsonschema:"the incoming URL, either a custom scheme or a universal link"`
}

type CreateLinkParams struct {
	Domain         string            `json:"domain" jsonschema:"verified domain the link is created under"`
	Title          string            `json:"title" jsonschema:"human readable title"`
	DeepLinkPath   string            `json:"deep_link_path,omitempty" jsonschema:"in-app destination, e.g. myapp://product/123"`
	OriginalURL    string            `json:"original_url,omitempty" jsonschema:"web fallback URL"`
	DeepLinkParams map[string]string `json:"deep_link_params,omitempty" jsonschema:"parameters delivered with the deep link"`
	ExpiresAt      string            `json:"expires_at,omitempty" jsonschema:"RFC 3339 expiry timestamp"`
	PathType       string            `json:"path_type,omitempty" jsonschema:"UNGUESSABLE (default) or SHORT"`
}

type GetLinkParams struct {
	ID string `json:"id" jsonschema:"link id"`
}

type RecoverDeferredLinkParams struct{}

type ResetStateParams struct{}

// ResolutionResult is a pipeline result with metadata flattened to strings.
type ResolutionResult struct {
	Handled     bool              `json:"handled"`
	OriginalURL string            `json:"original_url"`
	Path        string            `json:"path,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Error       string            `json:"error,omitempty"`
}

type LinkResult struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	AliasPath      string            `json:"alias_path"`
	Domain         string            `json:"domain"`
	FullURL        string            `json:"full_url"`
	OriginalURL    string            `json:"original_url,omitempty"`
	DeepLinkPath   string            `json:"deep_link_path,omitempty"`
	DeepLinkParams map[string]string `json:"deep_link_params,omitempty"`
	ExpiresAt      string            `json:"expires_at,omitempty"`
	CreatedAt      string            `json:"created_at,omitempty"`
}

type RecoverDeferredLinkResult struct {
	Found      bool              `json:"found"`
	Resolution *ResolutionResult `json:"resolution,omitempty"`
}

type ResetStateResult struct {
	Reset bool `json:"reset"`
}

func toResolutionResult(r resolution.Result) ResolutionResult {
	return ResolutionResult{
		Handled:     r.Handled,
		OriginalURL: r.OriginalURL,
		Path:        r.Path,
		Params:      r.Params,
		Metadata:    metadata.ToStrings(r.Metadata),
		Error:       r.Error,
	}
}

func toLinkResult(l *link.Link) LinkResult {
	out := LinkResult{
		ID:             l.ID,
		Title:          l.Title,
		AliasPath:      l.AliasPath,
		Domain:         l.Domain,
		FullURL:        l.FullURL,
		OriginalURL:    l.OriginalURL,
		DeepLinkPath:   l.DeepLinkPath,
		DeepLinkParams: l.DeepLinkParams,
	}
	if l.ExpiresAt != nil {
		out.ExpiresAt = l.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if !l.CreatedAt.IsZero() {
		out.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return out
}
