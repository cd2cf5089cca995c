package mocks

import (
	"context"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/stretchr/testify/mock"
)

// PreferenceStore is a mock for repository.PreferenceStore.
type PreferenceStore struct {
	mock.Mock
}

func (m *PreferenceStore) Get(ctx context.Context, namespace, key string) (string, error) {
	args := m.Called(ctx, namespace, key)
	return args.String(0), args.Error(1)
}

func (m *PreferenceStore) Set(ctx context.Context, namespace, key, value string) error {
	args := m.Called(ctx, namespace, key, value)
	return args.Error(0)
}

func (m *PreferenceStore) Delete(ctx context.Context, namespace, key string) error {
	args := m.Called(ctx, namespace, key)
	return args.Error(0)
}

func (m *PreferenceStore) Clear(ctx context.Context, namespace string) error {
	args := m.Called(ctx, namespace)
	return args.Error(0)
}

// Registry is a mock for link.Registry.
type Registry struct {
	mock.Mock
}

func (m *Registry) GetLink(ctx context.Context, id string) (*link.Link, error) {
	args := m.Called(ctx, id)
	if l, ok := args.Get(0).(*link.Link); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) RetrieveLink(ctx context.Context, visitedURL string) (*link.Retrieval, error) {
	args := m.Called(ctx, visitedURL)
	if r, ok := args.Get(0).(*link.Retrieval); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) GetVisitDetails(ctx context.Context, visitID string) (*link.Visit, error) {
	args := m.Called(ctx, visitID)
	if v, ok := args.Get(0).(*link.Visit); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Registry) CreateLink(ctx context.Context, req link.CreateRequest) (*link.Link, error) {
	args := m.Called(ctx, req)
	if l, ok := args.Get(0).(*link.Link); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}
