package link

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Service creates and looks up shortened links.
type Service struct {
	registry Registry
	logger   *slog.Logger
}

// NewService creates a new link service.
func NewService(registry Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{registry: registry, logger: logger}
}

// CreateLink registers a new shortened link. The registry generates the alias
// and is authoritative for everything beyond the required fields.
func (s *Service) CreateLink(ctx context.Context, req CreateRequest) (*Link, error) {
	if strings.TrimSpace(req.Domain) == "" || strings.TrimSpace(req.Title) == "" {
		return nil, ErrInvalidInput
	}
	if req.PathType == "" {
		req.PathType = PathUnguessable
	}
	if !req.PathType.Valid() {
		return nil, fmt.Errorf("%w: unknown path type %q", ErrInvalidInput, req.PathType)
	}

	s.logger.Debug("creating link", "domain", req.Domain, "title", req.Title, "path_type", req.PathType)

	created, err := s.registry.CreateLink(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating link: %w", err)
	}
	return created, nil
}

// GetLink fetches a link by ID.
func (s *Service) GetLink(ctx context.Context, id string) (*Link, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	l, err := s.registry.GetLink(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting link: %w", err)
	}
	return l, nil
}
