package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ganot/applinks/internal/repository"
)

const (
	// Namespace holds all durable SDK state.
	Namespace = "applinks"
	// ProcessedIDsKey stores the replay guard set as a JSON array.
	ProcessedIDsKey = "processed_visit_ids"
	// MaxProcessedIDs bounds the replay guard set.
	MaxProcessedIDs = 500
)

// ReplayGuard is a bounded, ordered set of consumed recovery identifiers.
// Past the bound the oldest identifiers are evicted first.
type ReplayGuard struct {
	mu    sync.Mutex
	store repository.PreferenceStore
	limit int
}

// NewReplayGuard creates a guard persisted in store.
func NewReplayGuard(store repository.PreferenceStore) *ReplayGuard {
	return &ReplayGuard{store: store, limit: MaxProcessedIDs}
}

// Has reports whether id was consumed.
func (g *ReplayGuard) Has(ctx context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(ids, id), nil
}

// Add records id. Adding an existing id is a no-op.
func (g *ReplayGuard) Add(ctx context.Context, id string) error {
	_, err := g.AddIfAbsent(ctx, id)
	return err
}

// AddIfAbsent records id and reports whether it was newly added. The check
// and the insert happen under one lock.
func (g *ReplayGuard) AddIfAbsent(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, repository.ErrInvalidInput
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	ids, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(ids, id) {
		return false, nil
	}

	ids = append(ids, id)
	if over := len(ids) - g.limit; over > 0 {
		ids = ids[over:]
	}
	if err := g.save(ctx, ids); err != nil {
		return false, err
	}
	return true, nil
}

// Clear forgets every recorded id.
func (g *ReplayGuard) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Delete(ctx, Namespace, ProcessedIDsKey); err != nil {
		return fmt.Errorf("clearing processed ids: %w", err)
	}
	return nil
}

// IDs returns the recorded ids, oldest first.
func (g *ReplayGuard) IDs(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load(ctx)
}

// Len returns the number of recorded ids.
func (g *ReplayGuard) Len(ctx context.Context) (int, error) {
	ids, err := g.IDs(ctx)
	return len(ids), err
}

func (g *ReplayGuard) load(ctx context.Context) ([]string, error) {
	raw, err := g.store.Get(ctx, Namespace, ProcessedIDsKey)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading processed ids: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding processed ids: %w", err)
	}
	return ids, nil
}

func (g *ReplayGuard) save(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding processed ids: %w", err)
	}
	if err := g.store.Set(ctx, Namespace, ProcessedIDsKey, string(data)); err != nil {
		return fmt.Errorf("saving processed ids: %w", err)
	}
	return nil
}
