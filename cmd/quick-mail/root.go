package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sungwon/quick-mail/internal/config"
	"github.com/sungwon/quick-mail/internal/logger"
	"github.com/sungwon/quick-mail/internal/mailutil"
	"github.com/sungwon/quick-mail/internal/mxcache"
)

type runtimeState struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

type runtimeKey struct{}

func newRootCommand() *cobra.Command {
	rt := &runtimeState{}

	root := &cobra.Command{
		Use:           "quick-mail",
		Short:         "Recipient validation and quick mail sending",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsConfig(cmd) {
				return nil
			}

			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return err
			}
			rt.cfg = cfg

			opts := logger.Options{
				Level:     cfg.Logging.Level,
				Output:    cfg.Logging.Output,
				FilePath:  cfg.Logging.FilePath,
				MaxSizeMB: cfg.Logging.MaxSizeMB,
				MaxFiles:  cfg.Logging.MaxFiles,
			}
			// Keep stdout free for command output.
			if cmd.Name() != "serve" && (opts.Output == "" || opts.Output == "stdout") {
				opts.Output = "console"
			}
			rt.log = logger.NewFromOptions(opts)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", "config", "Directory containing config.yaml")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		newServeCommand(),
		newValidateCommand(),
		newFilterCommand(),
		newSendCommand(),
		newSenderCommand(),
		newAPIKeyCommand(),
	)

	return root
}

// needsConfig reports whether cmd runs against a loaded configuration. Key
// generation, help and shell completion work without one.
func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "apikey", "help", "completion",
			cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil || rt.cfg == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// newValidator wires the configured MX resolver and cache into a validator.
func (rt *runtimeState) newValidator() (*mailutil.Validator, error) {
	resolver, err := mxcache.NewResolver(rt.cfg.MXCache, rt.cfg.Validation.DNSTimeout, rt.log)
	if err != nil {
		return nil, fmt.Errorf("create mx resolver: %w", err)
	}
	return mailutil.NewValidator(resolver, rt.log), nil
}

// validateOption returns ValidateDNS when dns is set, otherwise the
// configured default.
func (rt *runtimeState) validateOption(dns bool) mailutil.ValidateOption {
	if dns {
		return mailutil.ValidateDNS
	}
	return mailutil.ParseValidateOption(rt.cfg.Validation.Option)
}
