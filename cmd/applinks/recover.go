package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganot/applinks/internal/clipboard"
	"github.com/ganot/applinks/internal/domain/recovery"
	"github.com/ganot/applinks/internal/domain/resolution"
)

type recoverOutput struct {
	Found  bool               `json:"found"`
	Result *resolution.Result `json:"result,omitempty"`
}

func recoverCmd(a *app) *cobra.Command {
	var (
		source  string
		content string
		mode    string
	)

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover a deferred deep link from the clipboard",
		Long: `Read the clipboard, look up the visit it names and resolve the link it
points to. A visit id is consumed once; run "applinks reset" to replay it.

Use --clipboard memory --content VALUE on headless machines.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clip, err := openClipboard(source, content)
			if err != nil {
				return err
			}
			if mode != "" {
				if _, err := recovery.ParseMode(mode); err != nil {
					return err
				}
				a.cfg.Links.DeferredMode = mode
			}

			sdk, err := a.openSDK(clip)
			if err != nil {
				return err
			}
			result, err := sdk.RecoverDeferredLink(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), recoverOutput{Found: result != nil, Result: result})
		},
	}

	cmd.Flags().StringVar(&source, "clipboard", "system", "clipboard source: system or memory")
	cmd.Flags().StringVar(&content, "content", "", "clipboard content when --clipboard=memory")
	cmd.Flags().StringVar(&mode, "mode", "", "recovery mode: visit or url (overrides config)")
	return cmd
}

func openClipboard(source, content string) (recovery.Clipboard, error) {
	switch source {
	case "memory":
		return clipboard.NewMemory(content), nil
	case "system", "":
		sys, err := clipboard.NewSystem()
		if errors.Is(err, clipboard.ErrUnsupported) {
			return nil, fmt.Errorf("%w: use --clipboard memory --content VALUE", err)
		}
		if err != nil {
			return nil, err
		}
		return sys, nil
	default:
		return nil, fmt.Errorf("unknown clipboard source %q", source)
	}
}
