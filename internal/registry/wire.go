package registry

import (
	"encoding/json"
	"fmt"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/metadata"
)

// LinkPayload is the registry's JSON link representation.
type LinkPayload struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	AliasPath      string            `json:"alias_path"`
	Domain         string            `json:"domain"`
	OriginalURL    string            `json:"original_url"`
	DeepLinkPath   string            `json:"deep_link_path"`
	DeepLinkParams map[string]string `json:"deep_link_params"`
	ExpiresAt      *Timestamp        `json:"expires_at"`
	CreatedAt      Timestamp         `json:"created_at"`
	UpdatedAt      Timestamp         `json:"updated_at"`
	FullURL        string            `json:"full_url"`
}

// RetrievalPayload is a link with its visit_id sibling.
type RetrievalPayload struct {
	LinkPayload
	VisitID string `json:"visit_id"`
}

// VisitPayload is the visit details response.
type VisitPayload struct {
	ID                 string         `json:"id"`
	CreatedAt          Timestamp      `json:"created_at"`
	UpdatedAt          Timestamp      `json:"updated_at"`
	LastSeenAt         Timestamp      `json:"last_seen_at"`
	ExpiresAt          Timestamp      `json:"expires_at"`
	IPAddress          string         `json:"ip_address"`
	UserAgent          string         `json:"user_agent"`
	BrowserFingerprint metadata.Value `json:"browser_fingerprint"`
	Link               *LinkPayload   `json:"link"`
}

// RetrieveRequest is the body of the retrieve endpoint.
type RetrieveRequest struct {
	URL string `json:"url"`
}

// CreateRequest is the body of the create endpoint.
type CreateRequest struct {
	Domain string          `json:"domain"`
	Link   CreateLinkField `json:"link"`
}

// CreateLinkField is the nested link object of CreateRequest.
type CreateLinkField struct {
	Title               string              `json:"title"`
	OriginalURL         string              `json:"original_url,omitempty"`
	DeepLinkPath        string              `json:"deep_link_path,omitempty"`
	DeepLinkParams      map[string]string   `json:"deep_link_params,omitempty"`
	ExpiresAt           *Timestamp          `json:"expires_at,omitempty"`
	AliasPathAttributes AliasPathAttributes `json:"alias_path_attributes"`
}

// AliasPathAttributes selects the alias generation strategy.
type AliasPathAttributes struct {
	Type link.PathType `json:"type"`
}

// ErrorPayload is the registry's error envelope.
type ErrorPayload struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one registry error.
type ErrorDetail struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToLink converts the payload into the domain model.
func (p LinkPayload) ToLink() *link.Link {
	params := p.DeepLinkParams
	if params == nil {
		params = map[string]string{}
	}
	return &link.Link{
		ID:             p.ID,
		Title:          p.Title,
		AliasPath:      p.AliasPath,
		Domain:         p.Domain,
		OriginalURL:    p.OriginalURL,
		DeepLinkPath:   p.DeepLinkPath,
		DeepLinkParams: params,
		ExpiresAt:      p.ExpiresAt.timePtr(),
		CreatedAt:      p.CreatedAt.Time,
		UpdatedAt:      p.UpdatedAt.Time,
		FullURL:        p.FullURL,
	}
}

// FromLink converts a domain link into its wire form.
func FromLink(l *link.Link) LinkPayload {
	return LinkPayload{
		ID:             l.ID,
		Title:          l.Title,
		AliasPath:      l.AliasPath,
		Domain:         l.Domain,
		OriginalURL:    l.OriginalURL,
		DeepLinkPath:   l.DeepLinkPath,
		DeepLinkParams: l.DeepLinkParams,
		ExpiresAt:      timestampPtr(l.ExpiresAt),
		CreatedAt:      Timestamp{Time: l.CreatedAt},
		UpdatedAt:      Timestamp{Time: l.UpdatedAt},
		FullURL:        l.FullURL,
	}
}

// ToVisit converts the payload into the domain model.
func (p VisitPayload) ToVisit() *link.Visit {
	v := &link.Visit{
		ID:                 p.ID,
		CreatedAt:          p.CreatedAt.Time,
		UpdatedAt:          p.UpdatedAt.Time,
		LastSeenAt:         p.LastSeenAt.Time,
		ExpiresAt:          p.ExpiresAt.Time,
		IPAddress:          p.IPAddress,
		UserAgent:          p.UserAgent,
		BrowserFingerprint: p.BrowserFingerprint,
	}
	if p.Link != nil {
		v.Link = p.Link.ToLink()
	}
	return v
}

// FromVisit converts a domain visit into its wire form.
func FromVisit(v *link.Visit) VisitPayload {
	p := VisitPayload{
		ID:                 v.ID,
		CreatedAt:          Timestamp{Time: v.CreatedAt},
		UpdatedAt:          Timestamp{Time: v.UpdatedAt},
		LastSeenAt:         Timestamp{Time: v.LastSeenAt},
		ExpiresAt:          Timestamp{Time: v.ExpiresAt},
		IPAddress:          v.IPAddress,
		UserAgent:          v.UserAgent,
		BrowserFingerprint: v.BrowserFingerprint,
	}
	if v.Link != nil {
		lp := FromLink(v.Link)
		p.Link = &lp
	}
	return p
}

// NewCreateRequest builds the wire body for req.
func NewCreateRequest(req link.CreateRequest) CreateRequest {
	return CreateRequest{
		Domain: req.Domain,
		Link: CreateLinkField{
			Title:               req.Title,
			OriginalURL:         req.OriginalURL,
			DeepLinkPath:        req.DeepLinkPath,
			DeepLinkParams:      req.DeepLinkParams,
			ExpiresAt:           timestampPtr(req.ExpiresAt),
			AliasPathAttributes: AliasPathAttributes{Type: req.PathType},
		},
	}
}

// ToCreateRequest converts the wire body back into a domain request.
func (r CreateRequest) ToCreateRequest() link.CreateRequest {
	return link.CreateRequest{
		Domain:         r.Domain,
		Title:          r.Link.Title,
		DeepLinkPath:   r.Link.DeepLinkPath,
		OriginalURL:    r.Link.OriginalURL,
		DeepLinkParams: r.Link.DeepLinkParams,
		ExpiresAt:      r.Link.ExpiresAt.timePtr(),
		PathType:       r.Link.AliasPathAttributes.Type,
	}
}

// statusError maps a non-2xx response to the link error taxonomy.
func statusError(status int, body []byte) error {
	switch status {
	case 401:
		return link.ErrUnauthorized
	case 403:
		return link.ErrForbidden
	case 404:
		return link.ErrNotFound
	}
	var payload ErrorPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		code := payload.Error.Code
		if code == 0 {
			code = status
		}
		return &link.ServerError{Code: code, Message: payload.Error.Message}
	}
	return &link.ServerError{Code: status, Message: "Server error"}
}

func decodeJSON(body []byte, out any) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", link.ErrInvalidResponse)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", link.ErrInvalidResponse, err)
	}
	return nil
}
