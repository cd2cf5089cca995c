package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Config describes the default stage composition.
type Config struct {
	Schemes    []string
	Domains    []string
	Retriever  LinkRetriever
	Extensions []Middleware
	Logger     *slog.Logger
}

// Pipeline resolves raw URLs through a middleware chain.
type Pipeline struct {
	chain  *Chain
	logger *slog.Logger
}

// NewPipeline wraps an explicit chain.
func NewPipeline(chain *Chain, logger *slog.Logger) *Pipeline {
	if chain == nil {
		chain = NewChain()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{chain: chain, logger: logger}
}

// NewDefaultPipeline builds Logging, then Domain when domains are configured,
// then Scheme when schemes are configured, then any extensions.
func NewDefaultPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stages := []Middleware{NewLoggingMiddleware(logger)}
	if len(cfg.Domains) > 0 {
		stages = append(stages, NewDomainMiddleware(cfg.Domains, cfg.Retriever, logger))
	}
	if len(cfg.Schemes) > 0 {
		stages = append(stages, NewSchemeMiddleware(cfg.Schemes))
	}
	stages = append(stages, cfg.Extensions...)
	return NewPipeline(NewChain(stages...), logger)
}

// Chain returns the underlying chain.
func (p *Pipeline) Chain() *Chain {
	return p.chain
}

// Resolve parses raw and runs the chain. Failures are reported in the result.
func (p *Pipeline) Resolve(ctx context.Context, raw string, lc LinkContext) Result {
	u, err := parseURL(raw)
	if err != nil {
		p.logger.DebugContext(ctx, "rejecting unparseable url", "url", raw, "error", err)
		return Result{OriginalURL: raw, Params: map[string]string{}, Error: err.Error()}
	}
	return p.ResolveURL(ctx, u, lc)
}

// ResolveURL runs the chain on an already parsed URL.
func (p *Pipeline) ResolveURL(ctx context.Context, u *url.URL, lc LinkContext) Result {
	if u == nil {
		return Result{Params: map[string]string{}, Error: ErrInvalidURL.Error()}
	}
	if lc.DeepLinkParams == nil || lc.AdditionalData == nil {
		lc = lc.Clone()
	}

	result, err := p.chain.Execute(ctx, u, lc, Terminal)
	if err != nil {
		return Result{
			OriginalURL: u.String(),
			Params:      map[string]string{},
			Error:       err.Error(),
		}
	}
	return result
}

func parseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", ErrInvalidURL, trimmed)
	}
	return u, nil
}
