package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/navigation"
	"github.com/spf13/cobra"
)

func newRotateCmd(root *rootOptions) *cobra.Command {
	var (
		rawURL  string
		headers []string
		issued  string
		reveal  bool
	)
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Run the nonce interceptor against a navigation with a static issuer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(rawURL) == "" {
				return core.NewInvalidParameterError(fmt.Errorf("signinctl: --url is required"))
			}
			headerMap, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			rt, err := root.runtime(cmd, core.Config{})
			if err != nil {
				return err
			}
			issuer := core.RefreshTokenCredentialIssuerFunc(func(_ context.Context, _, username, nonce string) (string, error) {
				if issued != "" {
					return issued, nil
				}
				return "issued:" + username + ":" + nonce, nil
			})
			nav, err := navigation.FromRuntime(rt, issuer).Intercept(cmd.Context(), rawURL, headerMap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "outcome=%s rotated=%t\n", nav.Outcome, nav.Rotated)
			keys := make([]string, 0, len(nav.Headers))
			for key := range nav.Headers {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				value := nav.Headers[key]
				if !reveal && strings.EqualFold(key, core.RefreshTokenCredentialHeader) {
					value = core.RedactSecret(value)
				}
				fmt.Fprintf(out, "%s: %s\n", key, value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rawURL, "url", "", "navigation url")
	cmd.Flags().StringArrayVar(&headers, "header", nil, "session header as name:value (repeatable)")
	cmd.Flags().StringVar(&issued, "issued", "", "value the static issuer returns")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the credential header in clear")
	return cmd
}

func parseHeaders(values []string) (map[string]string, error) {
	headers := make(map[string]string, len(values))
	for _, value := range values {
		name, content, ok := strings.Cut(value, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, core.NewInvalidParameterError(fmt.Errorf("signinctl: header %q must be name:value", value))
		}
		headers[name] = strings.TrimSpace(content)
	}
	return headers, nil
}
