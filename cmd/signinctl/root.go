package main

import (
	"fmt"
	"os"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-signin/core"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	exitCodeSuccess      = 0
	exitCodeError        = 1
	exitCodeInvalidInput = 2
	exitCodeNetwork      = 3
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "signinctl",
		Short:         "Diagnostics for sign-in credential negotiation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newNonceCmd(opts),
		newProbeCmd(opts),
		newRotateCmd(opts),
	)
	return root
}

// runtime builds a core runtime from the config file plus overrides.
func (o *rootOptions) runtime(cmd *cobra.Command, overrides core.Config) (*core.Runtime, error) {
	raw, err := loadConfigFile(o.configPath)
	if err != nil {
		return nil, err
	}
	opts := []core.Option{
		core.WithConfigProvider(core.NewCfgxConfigProvider(core.StaticConfigLoader{Values: raw})),
	}
	if o.verbose {
		opts = append(opts, core.WithLogger(glog.NewLogger(
			glog.WithWriter(cmd.ErrOrStderr()),
			glog.WithLevel("debug"),
			glog.WithLoggerTypeConsole(),
		)))
	}
	return core.NewRuntime(overrides, opts...)
}

func loadConfigFile(path string) (map[string]any, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewInvalidParameterError(fmt.Errorf("signinctl: read config: %w", err))
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, core.NewInvalidParameterError(fmt.Errorf("signinctl: parse config: %w", err))
	}
	return raw, nil
}

func exitCode(err error) int {
	if err == nil {
		return exitCodeSuccess
	}
	switch core.ErrorCodeOf(err) {
	case core.ErrorCodeInvalidParameter:
		return exitCodeInvalidInput
	case core.ErrorCodeIO:
		return exitCodeNetwork
	default:
		return exitCodeError
	}
}

func describeError(err error) string {
	sub, _ := core.SubErrorOf(err)
	return fmt.Sprintf("error_code=%s sub_error=%s retryable=%t message=%q",
		core.ErrorCodeOf(err), sub, core.IsRetryable(err), err.Error())
}
