package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganot/applinks/internal/registry/registrytest"
)

const defaultDevKey = "pk_dev_applinks=dev"

func devRegistryCmd(a *app) *cobra.Command {
	var (
		addr     string
		keys     []string
		visitTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dev-registry",
		Short: "Run an in-memory link registry for local development",
		Long: `Serve the registry HTTP API from memory. Point APPLINKS_BASE_URL at it and
use one of the --key values as APPLINKS_API_KEY. State is lost on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := []registrytest.Option{
				registrytest.WithLogger(a.logger),
				registrytest.WithVisitTTL(visitTTL),
			}
			for _, pair := range keys {
				key, account, ok := strings.Cut(pair, "=")
				if !ok || key == "" || account == "" {
					return fmt.Errorf("invalid --key %q: want key=account", pair)
				}
				opts = append(opts, registrytest.WithAPIKey(key, account))
			}

			reg := registrytest.New(opts...)
			a.logger.Info("dev registry listening", "addr", addr, "keys", len(keys))
			return serveHTTP(cmd.Context(), a, &http.Server{
				Addr:              addr,
				Handler:           reg.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "listen address")
	cmd.Flags().StringArrayVar(&keys, "key", []string{defaultDevKey}, "accepted API key as key=account (repeatable)")
	cmd.Flags().DurationVar(&visitTTL, "visit-ttl", registrytest.DefaultVisitTTL, "lifetime of recorded visits")
	return cmd
}
