package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ganot/applinks/internal/domain/link"
)

func shortenCmd(a *app) *cobra.Command {
	var (
		req     link.CreateRequest
		params  []string
		short   bool
		expires string
	)

	cmd := &cobra.Command{
		Use:   "shorten",
		Short: "Create a shortened link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseParams(params)
			if err != nil {
				return err
			}
			req.DeepLinkParams = parsed
			req.PathType = link.PathUnguessable
			if short {
				req.PathType = link.PathShort
			}
			if expires != "" {
				at, err := parseExpiry(expires, time.Now())
				if err != nil {
					return err
				}
				req.ExpiresAt = &at
			}

			sdk, err := a.openSDK(nil)
			if err != nil {
				return err
			}
			created, err := sdk.Shortener().CreateLink(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVar(&req.Domain, "domain", "", "verified domain to create the link under")
	cmd.Flags().StringVar(&req.Title, "title", "", "link title")
	cmd.Flags().StringVar(&req.DeepLinkPath, "deep-link", "", "in-app destination, e.g. myapp://product/123")
	cmd.Flags().StringVar(&req.OriginalURL, "fallback", "", "web fallback URL")
	cmd.Flags().StringArrayVar(&params, "param", nil, "deep link parameter key=value (repeatable)")
	cmd.Flags().BoolVar(&short, "short", false, "use a short alias instead of an unguessable one")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry as RFC 3339 or a duration from now, e.g. 72h")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func parseParams(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: want key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

func parseExpiry(v string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(v); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("invalid --expires %q: duration must be positive", v)
		}
		return now.Add(d).UTC(), nil
	}
	at, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --expires %q: want RFC 3339 or a duration", v)
	}
	return at.UTC(), nil
}
