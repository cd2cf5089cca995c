// Package registry implements the HTTP client for the remote link registry.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ganot/applinks/internal/domain/link"
)

const (
	// DefaultDialTimeout bounds connection establishment.
	DefaultDialTimeout = 10 * time.Second
	// DefaultResponseHeaderTimeout bounds the wait for response headers.
	DefaultResponseHeaderTimeout = 10 * time.Second
	// DefaultTimeout bounds a whole request including the body.
	DefaultTimeout = 20 * time.Second

	maxResponseBytes = 1 << 20
)

// ErrInvalidBaseURL indicates the configured base URL is unusable.
var ErrInvalidBaseURL = errors.New("invalid registry base url")

// Client talks to the registry over HTTP. It performs no retries.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the bearer credential.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = strings.TrimSpace(key) }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a registry client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: newHTTPClient(),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: DefaultDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   DefaultDialTimeout,
		ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: DefaultTimeout}
}

// GetLink fetches a link by ID.
func (c *Client) GetLink(ctx context.Context, id string) (*link.Link, error) {
	var payload LinkPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/links/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, err
	}
	return payload.ToLink(), nil
}

// RetrieveLink maps a visited URL back to its link.
func (c *Client) RetrieveLink(ctx context.Context, visitedURL string) (*link.Retrieval, error) {
	var payload RetrievalPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/public/links/retrieve", RetrieveRequest{URL: visitedURL}, &payload); err != nil {
		return nil, err
	}
	return &link.Retrieval{Link: *payload.LinkPayload.ToLink(), VisitID: payload.VisitID}, nil
}

// GetVisitDetails fetches a visit and its optional link.
func (c *Client) GetVisitDetails(ctx context.Context, visitID string) (*link.Visit, error) {
	var payload VisitPayload
	if err := c.do(ctx, http.MethodGet, "/api/v1/visits/"+url.PathEscape(visitID)+"/details", nil, &payload); err != nil {
		return nil, err
	}
	return payload.ToVisit(), nil
}

// CreateLink registers a new shortened link.
func (c *Client) CreateLink(ctx context.Context, req link.CreateRequest) (*link.Link, error) {
	var payload LinkPayload
	if err := c.do(ctx, http.MethodPost, "/api/v1/links", NewCreateRequest(req), &payload); err != nil {
		return nil, err
	}
	return payload.ToLink(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	endpoint := c.baseURL.String() + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	c.setHeaders(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "registry request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", link.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %w", link.ErrTransport, method, path, err)
	}
	c.logger.DebugContext(ctx, "registry response", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return decodeJSON(data, out)
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("User-Agent", UserAgent())
	req.Header.Set("X-AppLinks-SDK-Name", SDKName)
	req.Header.Set("X-AppLinks-SDK-Version", SDKVersion)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var _ link.Registry = (*Client)(nil)
