package main

import (
	"github.com/spf13/cobra"
)

func linkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Inspect shortened links",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get ID",
		Short: "Fetch a link by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sdk, err := a.openSDK(nil)
			if err != nil {
				return err
			}
			got, err := sdk.Shortener().GetLink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), got)
		},
	})
	return cmd
}
