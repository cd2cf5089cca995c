package link_test

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLinkService_CreateLink_DefaultsPathType(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}

	created := &link.Link{ID: "l1", Title: "Summer", AliasPath: "xK3d", Domain: "example.onapp.link"}
	registry.On("CreateLink", ctx, mock.MatchedBy(func(req link.CreateRequest) bool {
		return req.PathType == link.PathUnguessable && req.Domain == "example.onapp.link"
	})).Return(created, nil)

	svc := link.NewService(registry, nil)
	got, err := svc.CreateLink(ctx, link.CreateRequest{
		Domain:       "example.onapp.link",
		Title:        "Summer",
		DeepLinkPath: "myapp://promo/SUMMER2024",
	})
	require.NoError(t, err)
	require.Equal(t, "xK3d", got.AliasPath)
	registry.AssertExpectations(t)
}

func TestLinkService_CreateLink_Validation(t *testing.T) {
	ctx := context.Background()
	svc := link.NewService(&mocks.Registry{}, nil)

	_, err := svc.CreateLink(ctx, link.CreateRequest{Title: "no domain"})
	require.ErrorIs(t, err, link.ErrInvalidInput)

	_, err = svc.CreateLink(ctx, link.CreateRequest{Domain: "example.com", Title: "  "})
	require.ErrorIs(t, err, link.ErrInvalidInput)

	_, err = svc.CreateLink(ctx, link.CreateRequest{Domain: "example.com", Title: "t", PathType: "LONG"})
	require.ErrorIs(t, err, link.ErrInvalidInput)
}

func TestLinkService_CreateLink_PropagatesRegistryErrors(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}
	registry.On("CreateLink", ctx, mock.Anything).Return((*link.Link)(nil), &link.ServerError{Code: 422, Message: "domain not verified"})

	svc := link.NewService(registry, nil)
	_, err := svc.CreateLink(ctx, link.CreateRequest{Domain: "example.com", Title: "t", PathType: link.PathShort})

	var serverErr *link.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, 422, serverErr.Code)
}

func TestLinkService_GetLink(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}
	registry.On("GetLink", ctx, "missing").Return((*link.Link)(nil), link.ErrNotFound)

	svc := link.NewService(registry, nil)
	_, err := svc.GetLink(ctx, "missing")
	require.ErrorIs(t, err, link.ErrNotFound)

	_, err = svc.GetLink(ctx, "")
	require.ErrorIs(t, err, link.ErrInvalidInput)
}

func TestLink_ExpiredAndTarget(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.True(t, (&link.Link{ExpiresAt: &past}).Expired(now))
	require.False(t, (&link.Link{ExpiresAt: &future}).Expired(now))
	require.False(t, (&link.Link{}).Expired(now))

	require.Equal(t, "myapp://promo", (&link.Link{DeepLinkPath: "myapp://promo", OriginalURL: "https://x"}).Target())
	require.Equal(t, "https://x", (&link.Link{OriginalURL: "https://x"}).Target())
}
