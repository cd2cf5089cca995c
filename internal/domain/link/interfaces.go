package link

import "context"

// Registry is the remote link registry. Implementations perform no retries.
type Registry interface {
	GetLink(ctx context.Context, id string) (*Link, error)
	RetrieveLink(ctx context.Context, visitedURL string) (*Retrieval, error)
	GetVisitDetails(ctx context.Context, visitID string) (*Visit, error)
	CreateLink(ctx context.Context, req CreateRequest) (*Link, error)
}
