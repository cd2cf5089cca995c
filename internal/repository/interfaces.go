package repository

import "context"

// PreferenceStore is a durable string map partitioned by namespace, so SDK
// state can be wiped independently of other application state.
type PreferenceStore interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
}
