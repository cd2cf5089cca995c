package recovery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ganot/applinks/internal/repository"
)

// FirstLaunchCompletedKey stores the durable first-launch flag.
const FirstLaunchCompletedKey = "first_launch_completed"

// LaunchState tracks whether first-launch recovery already ran.
type LaunchState struct {
	mu    sync.Mutex
	store repository.PreferenceStore
}

// NewLaunchState creates a launch flag persisted in store.
func NewLaunchState(store repository.PreferenceStore) *LaunchState {
	return &LaunchState{store: store}
}

// IsFirstLaunch reports whether MarkCompleted has never been called.
func (s *LaunchState) IsFirstLaunch(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, Namespace, FirstLaunchCompletedKey)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading launch state: %w", err)
	}
	completed, err := strconv.ParseBool(raw)
	if err != nil {
		return true, nil
	}
	return !completed, nil
}

// MarkCompleted records that first-launch handling ran.
func (s *LaunchState) MarkCompleted(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, Namespace, FirstLaunchCompletedKey, strconv.FormatBool(true)); err != nil {
		return fmt.Errorf("saving launch state: %w", err)
	}
	return nil
}
