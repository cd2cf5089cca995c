package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/applinks/internal/repository"
)

// PreferenceRepository implements repository.PreferenceStore for SQLite
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the value stored under namespace/key
func (r *PreferenceRepository) Get(ctx context.Context, namespace, key string) (string, error) {
	if namespace == "" || key == "" {
		return "", repository.ErrInvalidInput
	}

	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference: %w", err)
	}

	return value, nil
}

// Set stores value under namespace/key, replacing any previous value
func (r *PreferenceRepository) Set(ctx context.Context, namespace, key, value string) error {
	if namespace == "" || key == "" {
		return repository.ErrInvalidInput
	}

	query := `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, namespace, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}

	return nil
}

// Delete removes namespace/key. Deleting a missing key is not an error.
func (r *PreferenceRepository) Delete(ctx context.Context, namespace, key string) error {
	if namespace == "" || key == "" {
		return repository.ErrInvalidInput
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM preferences WHERE namespace = ? AND key = ?`,
		namespace, key,
	); err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}

	return nil
}

// Clear removes every key in namespace
func (r *PreferenceRepository) Clear(ctx context.Context, namespace string) error {
	if namespace == "" {
		return repository.ErrInvalidInput
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}

	return nil
}
