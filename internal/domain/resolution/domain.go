package resolution

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/metadata"
)

// LinkRetriever maps a visited URL back to its registry link.
type LinkRetriever interface {
	RetrieveLink(ctx context.Context, visitedURL string) (*link.Retrieval, error)
}

// DomainMiddleware resolves universal links through the registry. A failed
// lookup is not fatal: the traversal continues with the context unchanged.
type DomainMiddleware struct {
	matcher   *DomainMatcher
	retriever LinkRetriever
	logger    *slog.Logger
}

// NewDomainMiddleware creates a domain stage for the given domains.
func NewDomainMiddleware(domains []string, retriever LinkRetriever, logger *slog.Logger) *DomainMiddleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DomainMiddleware{
		matcher:   NewDomainMatcher(domains),
		retriever: retriever,
		logger:    logger,
	}
}

func (m *DomainMiddleware) Process(ctx context.Context, u *url.URL, lc LinkContext, next Next) (Result, error) {
	if m.retriever == nil || !m.matcher.Matches(u) {
		return next(ctx, u, lc)
	}

	retrieval, err := m.retriever.RetrieveLink(ctx, u.String())
	if err != nil {
		m.logger.DebugContext(ctx, "link retrieval failed, passing through", "url", u.String(), "error", err)
		return next(ctx, u, lc)
	}
	if retrieval == nil {
		m.logger.DebugContext(ctx, "link retrieval returned no link", "url", u.String())
		return next(ctx, u, lc)
	}

	enriched := lc.WithPath(retrieval.Link.DeepLinkPath)
	enriched = enriched.WithParams(retrieval.Link.DeepLinkParams)
	if retrieval.VisitID != "" {
		enriched = enriched.WithData(VisitIDKey, metadata.String(retrieval.VisitID))
	}
	enriched = enriched.WithData("link_id", metadata.String(retrieval.Link.ID))
	m.logger.DebugContext(ctx, "link retrieved", "url", u.String(), "link_id", retrieval.Link.ID)
	return next(ctx, u, enriched)
}
