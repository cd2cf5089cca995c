package applinks_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ganot/applinks/internal/applinks"
	"github.com/ganot/applinks/internal/clipboard"
	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/recovery"
	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/ganot/applinks/internal/metadata"
	"github.com/ganot/applinks/internal/repository/mocks"
	"github.com/ganot/applinks/internal/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const visitURL = "https://example.onapp.link/visit/abc-123"

func summerVisit() *link.Visit {
	return &link.Visit{
		ID: "abc-123",
		Link: &link.Link{
			ID:             "link-1",
			DeepLinkPath:   "myapp://promo/SUMMER2024",
			DeepLinkParams: map[string]string{"code": "SAVE20"},
		},
	}
}

func newSDK(t *testing.T, opts applinks.Options) *applinks.SDK {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = &mocks.Registry{}
	}
	sdk, err := applinks.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, sdk.Close()) })
	return sdk
}

func collect(t *testing.T, sdk *applinks.SDK) <-chan resolution.Result {
	t.Helper()
	ch := make(chan resolution.Result, 16)
	require.NoError(t, sdk.Subscribe(func(r resolution.Result) { ch <- r }))
	return ch
}

func TestNew_ValidatesOptions(t *testing.T) {
	_, err := applinks.New(applinks.Options{APIKey: "sk_live_secret", Registry: &mocks.Registry{}})
	require.ErrorIs(t, err, applinks.ErrPrivateKey)

	_, err = applinks.New(applinks.Options{DeferredMode: "carrier-pigeon", Registry: &mocks.Registry{}})
	require.Error(t, err)

	_, err = applinks.New(applinks.Options{BaseURL: "ftp://nope"})
	require.Error(t, err)

	sdk, err := applinks.New(applinks.Options{APIKey: "legacy_key"})
	require.NoError(t, err)
	require.NoError(t, sdk.Close())
}

func TestInitialize_OncePerProcess(t *testing.T) {
	applinks.ResetInitializeGuard()
	t.Cleanup(applinks.ResetInitializeGuard)

	_, err := applinks.Initialize(applinks.Options{APIKey: "sk_bad", Registry: &mocks.Registry{}})
	require.ErrorIs(t, err, applinks.ErrPrivateKey)

	sdk, err := applinks.Initialize(applinks.Options{Registry: &mocks.Registry{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sdk.Close() })

	_, err = applinks.Initialize(applinks.Options{Registry: &mocks.Registry{}})
	require.ErrorIs(t, err, applinks.ErrAlreadyInitialized)
}

func TestHandleLink_AutoHandlePublishes(t *testing.T) {
	sdk := newSDK(t, applinks.Options{Schemes: []string{"myapp"}, AutoHandleLinks: true})

	got := sdk.HandleLink(context.Background(), "myapp://product/shoes-123")
	require.True(t, got.Handled)
	require.Equal(t, "/product/shoes-123", got.Path)
	require.Equal(t, 1, sdk.Pending())

	ch := collect(t, sdk)
	require.Equal(t, got, <-ch)
}

func TestHandleLink_WithoutAutoHandle(t *testing.T) {
	sdk := newSDK(t, applinks.Options{Schemes: []string{"myapp"}})

	got := sdk.HandleLink(context.Background(), "myapp://promo/summer?code=SAVE20&discount=20")
	require.Equal(t, map[string]string{"code": "SAVE20", "discount": "20"}, got.Params)
	require.Zero(t, sdk.Pending())
}

func TestHandleLink_Extensions(t *testing.T) {
	deny := resolution.MiddlewareFunc(func(ctx context.Context, u *url.URL, lc resolution.LinkContext, next resolution.Next) (resolution.Result, error) {
		if lc.DeepLinkPath == "/admin" {
			return resolution.Result{OriginalURL: u.String(), Error: "route not allowed"}, nil
		}
		return next(ctx, u, lc)
	})
	sdk := newSDK(t, applinks.Options{Schemes: []string{"myapp"}, Middlewares: []resolution.Middleware{deny}})

	got := sdk.HandleLink(context.Background(), "myapp://admin")
	require.False(t, got.Handled)
	require.Equal(t, "route not allowed", got.Error)

	got = sdk.HandleLink(context.Background(), "myapp://home")
	require.True(t, got.Handled)
}

func TestStart_RecoversOnFirstLaunch(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}
	registry.On("GetVisitDetails", mock.Anything, "abc-123").Return(summerVisit(), nil).Once()
	board := clipboard.NewMemory(visitURL)

	sdk := newSDK(t, applinks.Options{
		Schemes:         []string{"myapp"},
		DeferredEnabled: true,
		Clipboard:       board,
		Registry:        registry,
	})

	require.NoError(t, sdk.Start(ctx))
	sdk.Wait()

	ch := collect(t, sdk)
	got := <-ch
	require.True(t, got.Handled)
	require.Equal(t, "/promo/SUMMER2024", got.Path)
	require.True(t, got.Metadata["visit_id"].Equal(metadata.String("abc-123")))
	require.True(t, got.Metadata["link_id"].Equal(metadata.String("link-1")))
	require.True(t, got.Metadata["code"].Equal(metadata.String("SAVE20")))

	require.Empty(t, board.Content())
	first, err := sdk.IsFirstLaunch(ctx)
	require.NoError(t, err)
	require.False(t, first)

	require.NoError(t, sdk.Start(ctx))
	sdk.Wait()
	registry.AssertExpectations(t)
}

func TestStart_MarksCompletedWhenRecoveryFails(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}
	registry.On("GetVisitDetails", mock.Anything, "abc-123").Return(nil, link.ErrNotFound)
	board := clipboard.NewMemory(visitURL)

	sdk := newSDK(t, applinks.Options{DeferredEnabled: true, Clipboard: board, Registry: registry})
	require.NoError(t, sdk.Start(ctx))
	sdk.Wait()

	first, err := sdk.IsFirstLaunch(ctx)
	require.NoError(t, err)
	require.False(t, first)
	require.Zero(t, sdk.Pending())
	require.Equal(t, visitURL, board.Content())
}

func TestStart_SkipsAfterFirstLaunch(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	store := sqlite.NewPreferenceRepository(db)
	require.NoError(t, recovery.NewLaunchState(store).MarkCompleted(ctx))

	registry := &mocks.Registry{}
	sdk := newSDK(t, applinks.Options{
		DeferredEnabled: true,
		Clipboard:       clipboard.NewMemory(visitURL),
		Registry:        registry,
		Store:           store,
	})
	require.NoError(t, sdk.Start(ctx))
	sdk.Wait()
	registry.AssertNotCalled(t, "GetVisitDetails", mock.Anything, mock.Anything)
}

func TestStart_CloseDuringRecoveryStillMarksFirstLaunch(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })
	store := sqlite.NewPreferenceRepository(db)

	started := make(chan struct{})
	registry := &mocks.Registry{}
	registry.On("GetVisitDetails", mock.Anything, "abc-123").
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled).Once()

	sdk, err := applinks.New(applinks.Options{
		DeferredEnabled: true,
		Clipboard:       clipboard.NewMemory(visitURL),
		Registry:        registry,
		Store:           store,
	})
	require.NoError(t, err)
	require.NoError(t, sdk.Start(ctx))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("recovery did not start")
	}
	require.NoError(t, sdk.Close())

	reopened := newSDK(t, applinks.Options{Store: store})
	first, err := reopened.IsFirstLaunch(ctx)
	require.NoError(t, err)
	require.False(t, first)
	registry.AssertExpectations(t)
}

func TestStart_Disabled(t *testing.T) {
	registry := &mocks.Registry{}
	sdk := newSDK(t, applinks.Options{Clipboard: clipboard.NewMemory(visitURL), Registry: registry})
	require.NoError(t, sdk.Start(context.Background()))
	sdk.Wait()
	registry.AssertNotCalled(t, "GetVisitDetails", mock.Anything, mock.Anything)
}

func TestRecoverDeferredLink_OnDemand(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}
	registry.On("GetVisitDetails", ctx, "abc-123").Return(summerVisit(), nil).Once()
	board := clipboard.NewMemory(visitURL)
	sdk := newSDK(t, applinks.Options{Schemes: []string{"myapp"}, Clipboard: board, Registry: registry})

	got, err := sdk.RecoverDeferredLink(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "/promo/SUMMER2024", got.Path)
	require.Equal(t, 1, sdk.Pending())

	none, err := sdk.RecoverDeferredLink(ctx)
	require.NoError(t, err)
	require.Nil(t, none)

	require.NoError(t, board.Write(visitURL))
	_, err = sdk.RecoverDeferredLink(ctx)
	require.ErrorIs(t, err, recovery.ErrAlreadyProcessed)
	require.Equal(t, visitURL, board.Content())
	registry.AssertExpectations(t)
}

func TestRecoverDeferredLink_ExpiredLink(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	visit := summerVisit()
	visit.Link.ExpiresAt = &past

	registry := &mocks.Registry{}
	registry.On("GetVisitDetails", ctx, "abc-123").Return(visit, nil)
	sdk := newSDK(t, applinks.Options{
		Clipboard: clipboard.NewMemory(visitURL),
		Registry:  registry,
		Clock:     recovery.ClockFunc(func() time.Time { return now }),
	})

	_, err := sdk.RecoverDeferredLink(ctx)
	require.ErrorIs(t, err, recovery.ErrExpired)
	n, err := sdk.ReplayGuard().Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	sdk := newSDK(t, applinks.Options{DeferredEnabled: true})
	require.NoError(t, sdk.ReplayGuard().Add(ctx, "abc-123"))
	require.NoError(t, sdk.Start(ctx))
	sdk.Wait()

	first, err := sdk.IsFirstLaunch(ctx)
	require.NoError(t, err)
	require.False(t, first)

	require.NoError(t, sdk.Reset(ctx))
	n, err := sdk.ReplayGuard().Len(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	first, err = sdk.IsFirstLaunch(ctx)
	require.NoError(t, err)
	require.True(t, first)
}

func TestShortener(t *testing.T) {
	ctx := context.Background()
	registry := &mocks.Registry{}
	registry.On("CreateLink", ctx, mock.AnythingOfType("link.CreateRequest")).Return(&link.Link{ID: "l1", AliasPath: "xK3d"}, nil)
	sdk := newSDK(t, applinks.Options{Registry: registry})

	created, err := sdk.Shortener().CreateLink(ctx, link.CreateRequest{Domain: "example.onapp.link", Title: "Summer"})
	require.NoError(t, err)
	require.Equal(t, "xK3d", created.AliasPath)
	require.Same(t, registry, sdk.Registry())
}

func TestClose(t *testing.T) {
	sdk, err := applinks.New(applinks.Options{Registry: &mocks.Registry{}})
	require.NoError(t, err)
	require.NoError(t, sdk.Close())
	require.NoError(t, sdk.Close())

	require.ErrorIs(t, sdk.Subscribe(func(resolution.Result) {}), applinks.ErrClosed)
	require.ErrorIs(t, sdk.Start(context.Background()), applinks.ErrClosed)
	_, err = sdk.RecoverDeferredLink(context.Background())
	require.True(t, errors.Is(err, applinks.ErrClosed))
}
