// Package applinks is the SDK facade: it wires the resolution pipeline,
// deferred recovery and the link shortener behind one caller-owned instance.
package applinks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/recovery"
	"github.com/ganot/applinks/internal/domain/resolution"
	"github.com/ganot/applinks/internal/registry"
	"github.com/ganot/applinks/internal/repository"
	"github.com/ganot/applinks/internal/sqlite"
)

var initialized atomic.Bool

// Initialize constructs the process-wide SDK instance. Only the first call
// in a process succeeds; later calls return ErrAlreadyInitialized. Tests
// that need independent instances use New.
func Initialize(opts Options) (*SDK, error) {
	if !initialized.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}
	sdk, err := New(opts)
	if err != nil {
		initialized.Store(false)
		return nil, err
	}
	return sdk, nil
}

// SDK resolves incoming links and recovers deferred deep links.
type SDK struct {
	opts     Options
	logger   *slog.Logger
	registry link.Registry
	pipeline *resolution.Pipeline
	recovery *recovery.Service
	guard    *recovery.ReplayGuard
	launch   *recovery.LaunchState
	links    *link.Service
	store    repository.PreferenceStore
	queue    *resultQueue

	ownedDB     *sqlite.DB
	ownedClient *registry.Client

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	startOnce sync.Once
	closed    atomic.Bool
}

// New creates an independent SDK instance.
func New(opts Options) (*SDK, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	if err := validateKey(opts.APIKey, logger); err != nil {
		return nil, err
	}
	mode, err := recovery.ParseMode(string(opts.DeferredMode))
	if err != nil {
		return nil, err
	}

	s := &SDK{opts: opts, logger: logger}

	s.registry = opts.Registry
	if s.registry == nil {
		client, err := registry.New(opts.BaseURL,
			registry.WithAPIKey(opts.APIKey),
			registry.WithTimeout(opts.HTTPTimeout),
			registry.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("creating registry client: %w", err)
		}
		s.registry = client
		s.ownedClient = client
	}

	s.store = opts.Store
	if s.store == nil {
		db, err := sqlite.New(":memory:")
		if err != nil {
			return nil, fmt.Errorf("opening preference store: %w", err)
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrating preference store: %w", err)
		}
		s.ownedDB = db
		s.store = sqlite.NewPreferenceRepository(db)
	}

	s.pipeline = resolution.NewDefaultPipeline(resolution.Config{
		Schemes:    opts.Schemes,
		Domains:    opts.Domains,
		Retriever:  s.registry,
		Extensions: opts.Middlewares,
		Logger:     logger,
	})
	s.guard = recovery.NewReplayGuard(s.store)
	s.launch = recovery.NewLaunchState(s.store)
	s.recovery = recovery.NewService(opts.Clipboard, s.registry, s.guard, logger,
		recovery.WithClock(opts.Clock),
		recovery.WithMode(mode),
	)
	s.links = link.NewService(s.registry, logger)
	s.queue = newResultQueue(DefaultQueueCapacity, logger)
	s.ctx, s.cancel = context.WithCancel(context.Background())

	return s, nil
}

// HandleLink resolves raw through the pipeline. With AutoHandleLinks the
// result is also published to subscribers.
func (s *SDK) HandleLink(ctx context.Context, raw string) resolution.Result {
	lc := resolution.NewLinkContext(false, s.opts.Clock.Now())
	result := s.pipeline.Resolve(ctx, raw, lc)
	if s.opts.AutoHandleLinks {
		s.queue.publish(result)
	}
	return result
}

// Start runs first-launch deferred recovery in the background when enabled.
// It returns immediately; Close waits for the background work.
func (s *SDK) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.opts.DeferredEnabled {
		return nil
	}

	var startErr error
	s.startOnce.Do(func() {
		first, err := s.launch.IsFirstLaunch(ctx)
		if err != nil {
			startErr = fmt.Errorf("checking first launch: %w", err)
			return
		}
		if !first {
			s.logger.Debug("skipping deferred link check, not first launch")
			return
		}

		s.logger.Debug("first launch detected, checking for deferred link")
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runFirstLaunch(s.ctx)
		}()
	})
	return startErr
}

func (s *SDK) runFirstLaunch(ctx context.Context) {
	recovered, err := s.recovery.Recover(ctx)

	// Close cancels ctx; the attempt still counts as the first launch.
	if markErr := s.launch.MarkCompleted(context.WithoutCancel(ctx)); markErr != nil {
		s.logger.Warn("failed to mark first launch completed", "error", markErr)
	}

	if err != nil {
		s.logDeferredError(err)
		return
	}
	if recovered == nil {
		s.logger.Debug("no deferred link found")
		return
	}

	result := s.resolveRecovered(ctx, recovered, true)
	s.queue.publish(result)
}

// RecoverDeferredLink runs clipboard recovery on demand. It returns nil, nil
// when the clipboard holds nothing usable. A recovered result is published.
func (s *SDK) RecoverDeferredLink(ctx context.Context) (*resolution.Result, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	recovered, err := s.recovery.Recover(ctx)
	if err != nil {
		return nil, err
	}
	if recovered == nil {
		return nil, nil
	}
	result := s.resolveRecovered(ctx, recovered, false)
	s.queue.publish(result)
	return &result, nil
}

func (s *SDK) resolveRecovered(ctx context.Context, recovered *recovery.Recovered, firstLaunch bool) resolution.Result {
	lc := resolution.NewLinkContext(firstLaunch, s.opts.Clock.Now())
	for k, v := range recovered.Metadata {
		lc.AdditionalData[k] = v
	}
	s.logger.Info("resolving deferred link", "url", recovered.URL, "identifier", recovered.Identifier)
	return s.pipeline.Resolve(ctx, recovered.URL, lc)
}

func (s *SDK) logDeferredError(err error) {
	if recovery.IsRecoveryError(err) {
		s.logger.Info("deferred link not used", "reason", err)
		return
	}
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("deferred link check cancelled")
		return
	}
	s.logger.Warn("deferred link check failed", "error", err)
}

// Subscribe attaches l and drains buffered results to it in arrival order.
func (s *SDK) Subscribe(l Listener) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if l == nil {
		return errors.New("listener is nil")
	}
	return s.queue.attach(l)
}

// Unsubscribe detaches the listener. Later results are buffered again.
func (s *SDK) Unsubscribe() {
	s.queue.detach()
}

// Pending returns the number of buffered results.
func (s *SDK) Pending() int {
	return s.queue.pending()
}

// Shortener returns the link creation service.
func (s *SDK) Shortener() *link.Service {
	return s.links
}

// Registry returns the registry the SDK talks to.
func (s *SDK) Registry() link.Registry {
	return s.registry
}

// ReplayGuard returns the guard of consumed recovery identifiers.
func (s *SDK) ReplayGuard() *recovery.ReplayGuard {
	return s.guard
}

// IsFirstLaunch reports whether first-launch handling has not yet run.
func (s *SDK) IsFirstLaunch(ctx context.Context) (bool, error) {
	return s.launch.IsFirstLaunch(ctx)
}

// Reset wipes the durable SDK state: the replay guard and the launch flag.
func (s *SDK) Reset(ctx context.Context) error {
	if err := s.store.Clear(ctx, recovery.Namespace); err != nil {
		return fmt.Errorf("resetting sdk state: %w", err)
	}
	s.logger.Info("sdk state reset")
	return nil
}

// Wait blocks until background recovery started by Start has finished.
func (s *SDK) Wait() {
	s.wg.Wait()
}

// Close stops background recovery, waits for it and releases owned resources.
func (s *SDK) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()
	s.wg.Wait()

	if s.ownedClient != nil {
		s.ownedClient.Close()
	}
	if s.ownedDB != nil {
		if err := s.ownedDB.Close(); err != nil {
			return fmt.Errorf("closing preference store: %w", err)
		}
	}
	return nil
}
