package main

import (
	"fmt"

	"github.com/goliatone/go-signin/core"
	"github.com/spf13/cobra"
)

func newNonceCmd(root *rootOptions) *cobra.Command {
	var count, size int
	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "Generate URL-safe nonces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return core.NewInvalidParameterError(fmt.Errorf("signinctl: --count must be positive"))
			}
			overrides := core.Config{}
			if size > 0 {
				overrides.Nonce.ByteLength = size
			}
			rt, err := root.runtime(cmd, overrides)
			if err != nil {
				return err
			}
			generator := rt.Nonces()
			for range count {
				nonce, err := generator.Generate()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), nonce)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of nonces")
	cmd.Flags().IntVar(&size, "bytes", 0, "random bytes per nonce (default from config)")
	return cmd
}
