package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/transport"
	"github.com/spf13/cobra"
)

func newProbeCmd(root *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "GET a url and print how a failure would be classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := root.runtime(cmd, core.Config{})
			if err != nil {
				return err
			}
			adapter := transport.NewRESTAdapter(&http.Client{})
			adapter.Classifier = rt.Classifier()
			res, err := adapter.Do(cmd.Context(), transport.Request{
				Method:  http.MethodGet,
				URL:     args[0],
				Timeout: timeout,
			})
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), describeError(err))
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status=%d duration_ms=%d bytes=%d\n",
				res.StatusCode, res.Duration.Milliseconds(), len(res.Body))
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}
