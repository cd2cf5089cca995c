// Package registrytest provides an in-memory link registry speaking the
// registry HTTP contract. It backs client tests and the dev-registry command.
package registrytest

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/metadata"
	"github.com/ganot/applinks/internal/registry"
	"github.com/ganot/applinks/internal/transport"
)

// DefaultVisitTTL is how long a recorded visit stays valid.
const DefaultVisitTTL = 24 * time.Hour

// Server is an in-memory registry.
type Server struct {
	mu       sync.Mutex
	links    map[string]*link.Link
	aliases  map[string]string
	visits   map[string]*link.Visit
	keys     transport.StaticKeys
	now      func() time.Time
	visitTTL time.Duration
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey accepts key as a bearer credential for account.
func WithAPIKey(key, account string) Option {
	return func(s *Server) { s.keys[key] = account }
}

// WithClock overrides the server clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithVisitTTL overrides how long new visits remain valid.
func WithVisitTTL(ttl time.Duration) Option {
	return func(s *Server) { s.visitTTL = ttl }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Server {
	s := &Server{
		links:    map[string]*link.Link{},
		aliases:  map[string]string{},
		visits:   map[string]*link.Visit{},
		keys:     transport.StaticKeys{},
		now:      time.Now,
		visitTTL: DefaultVisitTTL,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the registry API.
func (s *Server) Handler() http.Handler {
	r := transport.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/public/links/retrieve", s.handleRetrieve)
		r.Group(func(r chi.Router) {
			r.Use(transport.AuthMiddleware(s.keys))
			r.Post("/links", s.handleCreate)
			r.Get("/links/{id}", s.handleGetLink)
			r.Get("/visits/{id}/details", s.handleVisitDetails)
		})
	})
	return r
}

// AddLink stores l, assigning an ID, alias and timestamps when missing.
func (s *Server) AddLink(l link.Link) *link.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLinkLocked(l, link.PathUnguessable)
}

// RecordVisit records a visit to the link with linkID and returns it.
func (s *Server) RecordVisit(linkID string) (*link.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[linkID]
	if !ok {
		return nil, fmt.Errorf("recording visit: %w", link.ErrNotFound)
	}
	return s.recordVisitLocked(l, "", ""), nil
}

// AddVisit stores v as-is.
func (s *Server) AddVisit(v link.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := v
	s.visits[v.ID] = &cp
}

// Links returns the number of stored links.
func (s *Server) Links() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

func (s *Server) addLinkLocked(l link.Link, pathType link.PathType) *link.Link {
	now := s.now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.AliasPath == "" {
		l.AliasPath = s.newAliasLocked(pathType)
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	if l.DeepLinkParams == nil {
		l.DeepLinkParams = map[string]string{}
	}
	if l.FullURL == "" {
		l.FullURL = "https://" + l.Domain + "/" + l.AliasPath
	}
	stored := l
	s.links[l.ID] = &stored
	s.aliases[aliasKey(l.Domain, l.AliasPath)] = l.ID
	cp := stored
	return &cp
}

func (s *Server) newAliasLocked(pathType link.PathType) string {
	for {
		token := strings.ReplaceAll(uuid.NewString(), "-", "")
		if pathType == link.PathShort {
			token = token[:6]
		}
		taken := false
		for key := range s.aliases {
			if strings.HasSuffix(key, "/"+token) {
				taken = true
				break
			}
		}
		if !taken {
			return token
		}
	}
}

func (s *Server) recordVisitLocked(l *link.Link, ip, userAgent string) *link.Visit {
	now := s.now().UTC()
	v := &link.Visit{
		ID:                 uuid.NewString(),
		CreatedAt:          now,
		UpdatedAt:          now,
		LastSeenAt:         now,
		ExpiresAt:          now.Add(s.visitTTL),
		IPAddress:          ip,
		UserAgent:          userAgent,
		BrowserFingerprint: metadata.Null(),
		Link:               l,
	}
	s.visits[v.ID] = v
	return v
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body registry.CreateRequest
	if err := transport.DecodeJSON(r.Body, &body); err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	req := body.ToCreateRequest()
	switch {
	case strings.TrimSpace(req.Domain) == "":
		transport.WriteError(w, http.StatusUnprocessableEntity, "domain is required")
		return
	case strings.TrimSpace(req.Title) == "":
		transport.WriteError(w, http.StatusUnprocessableEntity, "title is required")
		return
	case req.PathType != "" && !req.PathType.Valid():
		transport.WriteError(w, http.StatusUnprocessableEntity, "unknown alias path type")
		return
	}

	s.mu.Lock()
	created := s.addLinkLocked(link.Link{
		Title:          req.Title,
		Domain:         req.Domain,
		OriginalURL:    req.OriginalURL,
		DeepLinkPath:   req.DeepLinkPath,
		DeepLinkParams: req.DeepLinkParams,
		ExpiresAt:      req.ExpiresAt,
	}, req.PathType)
	s.mu.Unlock()

	account, _ := transport.AccountFromContext(r.Context())
	s.logger.Info("link created", "id", created.ID, "alias", created.AliasPath, "account", account)
	transport.WriteJSON(w, http.StatusCreated, registry.FromLink(created))
}

func (s *Server) handleGetLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	l, ok := s.links[id]
	var cp link.Link
	if ok {
		cp = *l
	}
	s.mu.Unlock()

	if !ok {
		transport.WriteError(w, http.StatusNotFound, "link not found")
		return
	}
	transport.WriteJSON(w, http.StatusOK, registry.FromLink(&cp))
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var body registry.RetrieveRequest
	if err := transport.DecodeJSON(r.Body, &body); err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	visited, err := url.Parse(body.URL)
	if err != nil || visited.Host == "" {
		transport.WriteError(w, http.StatusBadRequest, "url must be absolute")
		return
	}

	key := aliasKey(visited.Hostname(), strings.Trim(visited.Path, "/"))
	client, _ := transport.ClientFromContext(r.Context())

	s.mu.Lock()
	id, ok := s.aliases[key]
	var payload registry.RetrievalPayload
	if ok {
		l := s.links[id]
		v := s.recordVisitLocked(l, r.RemoteAddr, client.UserAgent)
		payload = registry.RetrievalPayload{LinkPayload: registry.FromLink(l), VisitID: v.ID}
	}
	s.mu.Unlock()

	if !ok {
		transport.WriteError(w, http.StatusNotFound, "link not found")
		return
	}
	transport.WriteJSON(w, http.StatusOK, payload)
}

func (s *Server) handleVisitDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	v, ok := s.visits[id]
	var payload registry.VisitPayload
	if ok {
		payload = registry.FromVisit(v)
	}
	s.mu.Unlock()

	if !ok {
		transport.WriteError(w, http.StatusNotFound, "visit not found")
		return
	}
	transport.WriteJSON(w, http.StatusOK, payload)
}

func aliasKey(domain, alias string) string {
	return strings.ToLower(domain) + "/" + alias
}
