// Package recovery implements clipboard-based deferred deep-link recovery
// with durable replay protection.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/metadata"
)

// Mode selects how a clipboard identifier is turned into a link.
type Mode string

const (
	// ModeVisit resolves a visit identifier through the registry.
	ModeVisit Mode = "visit"
	// ModeDirectURL uses the clipboard URL as-is, with no registry round-trip.
	ModeDirectURL Mode = "url"
)

// ParseMode parses a configured mode, defaulting to ModeVisit.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeVisit:
		return ModeVisit, nil
	case ModeDirectURL:
		return ModeDirectURL, nil
	}
	return "", fmt.Errorf("unknown deferred mode %q", s)
}

// Metadata keys added to recovered links.
const (
	VisitIDKey = "visit_id"
	LinkIDKey  = "link_id"
)

// Recovered is a successfully recovered deferred link.
type Recovered struct {
	URL        string
	Identifier string
	Link       *link.Link
	Metadata   map[string]metadata.Value
}

// Service recovers deferred deep links from the clipboard.
type Service struct {
	clipboard Clipboard
	visits    VisitFetcher
	guard     *ReplayGuard
	clock     Clock
	mode      Mode
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for expiry checks.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMode selects the recovery mode.
func WithMode(m Mode) Option {
	return func(s *Service) {
		if m != "" {
			s.mode = m
		}
	}
}

// NewService creates a recovery service.
func NewService(clipboard Clipboard, visits VisitFetcher, guard *ReplayGuard, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		clipboard: clipboard,
		visits:    visits,
		guard:     guard,
		clock:     SystemClock(),
		mode:      ModeVisit,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode returns the configured recovery mode.
func (s *Service) Mode() Mode {
	return s.mode
}

// Recover attempts one clipboard recovery. It returns nil, nil when the
// clipboard holds nothing usable. The clipboard is cleared only on success.
func (s *Service) Recover(ctx context.Context) (*Recovered, error) {
	content, ok := s.readClipboard()
	if !ok {
		return nil, nil
	}

	if s.mode == ModeDirectURL {
		return s.recoverDirect(ctx, content)
	}

	id, ok := ExtractIdentifier(content)
	if !ok {
		s.logger.DebugContext(ctx, "clipboard holds no recovery identifier")
		return nil, nil
	}

	seen, err := s.guard.Has(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("checking replay guard: %w", err)
	}
	if seen {
		s.logger.InfoContext(ctx, "deferred link already processed", "visit_id", id)
		return nil, ErrAlreadyProcessed
	}

	visit, err := s.visits.GetVisitDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching visit details: %w", err)
	}
	if visit == nil || visit.Link == nil {
		return nil, ErrNoLinkData
	}
	l := visit.Link
	if l.Expired(s.clock.Now()) {
		s.logger.InfoContext(ctx, "deferred link expired", "visit_id", id, "expires_at", l.ExpiresAt)
		return nil, ErrExpired
	}
	target := l.Target()
	if target == "" {
		return nil, ErrNoLinkData
	}

	meta := metadata.FromStrings(l.DeepLinkParams)
	meta[VisitIDKey] = metadata.String(id)
	meta[LinkIDKey] = metadata.String(l.ID)

	if err := s.consume(ctx, id); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "deferred link recovered", "visit_id", id, "link_id", l.ID)
	return &Recovered{URL: target, Identifier: id, Link: l, Metadata: meta}, nil
}

func (s *Service) recoverDirect(ctx context.Context, content string) (*Recovered, error) {
	target := strings.TrimSpace(content)
	if !isAbsoluteURL(target) {
		s.logger.DebugContext(ctx, "clipboard content is not a url")
		return nil, nil
	}

	seen, err := s.guard.Has(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("checking replay guard: %w", err)
	}
	if seen {
		return nil, ErrAlreadyProcessed
	}
	if err := s.consume(ctx, target); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "deferred url recovered", "url", target)
	return &Recovered{URL: target, Identifier: target, Metadata: map[string]metadata.Value{}}, nil
}

// consume records id and clears the clipboard. A failed clear is logged;
// the guard already prevents the id from being resolved twice.
func (s *Service) consume(ctx context.Context, id string) error {
	added, err := s.guard.AddIfAbsent(ctx, id)
	if err != nil {
		return fmt.Errorf("recording identifier: %w", err)
	}
	if !added {
		return ErrAlreadyProcessed
	}
	if err := s.clipboard.Clear(); err != nil {
		s.logger.WarnContext(ctx, "failed to clear clipboard", "error", err)
	}
	return nil
}

func (s *Service) readClipboard() (string, bool) {
	if s.clipboard == nil || !s.clipboard.HasURLs() {
		s.logger.Debug("no url detected on clipboard")
		return "", false
	}
	content, err := s.clipboard.ReadString()
	if err != nil {
		s.logger.Warn("failed to read clipboard", "error", err)
		return "", false
	}
	if strings.TrimSpace(content) == "" {
		return "", false
	}
	return content, true
}

// IsRecoveryError reports whether err is one of the recovery outcomes that
// leave the clipboard untouched.
func IsRecoveryError(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrNoLinkData) || errors.Is(err, ErrExpired)
}
