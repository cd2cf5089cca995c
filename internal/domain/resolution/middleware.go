package resolution

import (
	"context"
	"net/url"
)

// Next invokes the remainder of the chain.
type Next func(ctx context.Context, u *url.URL, lc LinkContext) (Result, error)

// Middleware is one pipeline stage. A stage either calls next unchanged
// (pass-through), calls next with an enriched context, or returns a result
// without calling next (short-circuit).
type Middleware interface {
	Process(ctx context.Context, u *url.URL, lc LinkContext, next Next) (Result, error)
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, u *url.URL, lc LinkContext, next Next) (Result, error)

// Process calls f.
func (f MiddlewareFunc) Process(ctx context.Context, u *url.URL, lc LinkContext, next Next) (Result, error) {
	return f(ctx, u, lc, next)
}

// Chain runs middleware in order and ends in a terminal handler.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a chain from the given stages. Nil stages are skipped.
func NewChain(middlewares ...Middleware) *Chain {
	c := &Chain{}
	for _, m := range middlewares {
		if m != nil {
			c.middlewares = append(c.middlewares, m)
		}
	}
	return c
}

// Middlewares returns the configured stages in order.
func (c *Chain) Middlewares() []Middleware {
	return append([]Middleware(nil), c.middlewares...)
}

// Append returns a new chain with extra stages after the existing ones.
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	return NewChain(append(c.Middlewares(), middlewares...)...)
}

// Execute runs the chain. The first error aborts the traversal.
func (c *Chain) Execute(ctx context.Context, u *url.URL, lc LinkContext, final Next) (Result, error) {
	return c.executeAt(ctx, 0, u, lc, final)
}

func (c *Chain) executeAt(ctx context.Context, index int, u *url.URL, lc LinkContext, final Next) (Result, error) {
	if index >= len(c.middlewares) {
		return final(ctx, u, lc)
	}
	return c.middlewares[index].Process(ctx, u, lc, func(ctx context.Context, nextURL *url.URL, nextLC LinkContext) (Result, error) {
		return c.executeAt(ctx, index+1, nextURL, nextLC, final)
	})
}

// Terminal converts the final context into a handled result.
func Terminal(_ context.Context, u *url.URL, lc LinkContext) (Result, error) {
	params := lc.DeepLinkParams
	if params == nil {
		params = map[string]string{}
	}
	return Result{
		Handled:     true,
		OriginalURL: u.String(),
		Path:        lc.DeepLinkPath,
		Params:      params,
		Metadata:    lc.AdditionalData,
	}, nil
}
