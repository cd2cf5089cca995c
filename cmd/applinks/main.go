// Package main provides the applinks CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ganot/applinks/internal/applinks"
	"github.com/ganot/applinks/internal/config"
	"github.com/ganot/applinks/internal/domain/recovery"
	"github.com/ganot/applinks/internal/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes one CLI invocation and releases everything it opened.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	return err
}

// app carries state shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	closers []func() error

	dbPath   string
	logLevel string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "applinks",
		Short: "Resolve app links, shorten links and recover deferred deep links",
		Long: `applinks drives the AppLinks SDK from a terminal.

Configuration comes from defaults, an optional .env file, the YAML file named
by APPLINKS_CONFIG_PATH and APPLINKS_* environment variables, in that order.
Logs go to stderr (or APPLINKS_LOG_PATH); stdout carries command output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite state path (overrides APPLINKS_DB_PATH)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides APPLINKS_LOG_LEVEL)")

	root.AddCommand(resolveCmd(a))
	root.AddCommand(shortenCmd(a))
	root.AddCommand(linkCmd(a))
	root.AddCommand(recoverCmd(a))
	root.AddCommand(resetCmd(a))
	root.AddCommand(mcpCmd(a))
	root.AddCommand(devRegistryCmd(a))

	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if a.dbPath != "" {
		cfg.DB.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	logWriter := stderr
	if logPath := os.Getenv("APPLINKS_LOG_PATH"); logPath != "" {
		fileWriter, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(stderr, "log file error: %v\n", err)
		} else {
			a.closers = append(a.closers, fileWriter.Close)
			logWriter = fileWriter
		}
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: config.ParseLevel(cfg.Log.Level),
	}))
	return nil
}

func (a *app) close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

// openSDK builds an SDK backed by the configured SQLite file. The SDK and the
// database are closed when the invocation finishes.
func (a *app) openSDK(clip recovery.Clipboard) (*applinks.SDK, error) {
	if err := ensureDBDir(a.cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(a.cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	sdk, err := applinks.New(applinks.Options{
		BaseURL:         a.cfg.Registry.BaseURL,
		APIKey:          a.cfg.Registry.APIKey,
		Schemes:         a.cfg.Links.Schemes,
		Domains:         a.cfg.Links.Domains,
		AutoHandleLinks: a.cfg.Links.AutoHandle,
		DeferredEnabled: a.cfg.Links.DeferredEnabled,
		DeferredMode:    recovery.Mode(a.cfg.Links.DeferredMode),
		Store:           sqlite.NewPreferenceRepository(db),
		Clipboard:       clip,
		Logger:          a.logger,
		HTTPTimeout:     a.cfg.Registry.HTTPTimeout,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	// Closers run in reverse: the SDK first, then its store.
	a.closers = append(a.closers, db.Close, sdk.Close)
	return sdk, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
