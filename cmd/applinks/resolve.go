package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ganot/applinks/internal/domain/resolution"
)

const maxConcurrentResolves = 8

func resolveCmd(a *app) *cobra.Command {
	var failUnhandled bool

	cmd := &cobra.Command{
		Use:   "resolve URL...",
		Short: "Resolve one or more incoming links",
		Long: `Run each URL through the resolution pipeline and print the results as JSON,
in argument order. Universal links on the configured domains are looked up in
the registry; custom scheme links are resolved locally.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := a.openSDK(nil)
			if err != nil {
				return err
			}

			results := make([]resolution.Result, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxConcurrentResolves)
			for i, raw := range args {
				g.Go(func() error {
					results[i] = sdk.HandleLink(ctx, raw)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if failUnhandled {
				for _, r := range results {
					if !r.Handled {
						return errUnhandled
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failUnhandled, "fail-unhandled", false, "exit non-zero when any URL is not handled")
	return cmd
}
