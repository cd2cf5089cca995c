package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget processed visit ids and the first-launch flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sdk, err := a.openSDK(nil)
			if err != nil {
				return err
			}
			if err := sdk.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "state reset")
			return nil
		},
	}
}
