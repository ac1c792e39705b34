// cmd/costli/root.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"costli-agents/internal/bootstrap"
	"costli-agents/internal/common/config"
	"costli-agents/internal/common/logger"
)

// appLoader builds the wired application for one command run.
type appLoader func(ctx context.Context, configPath, logLevel string) (*bootstrap.App, error)

func loadApp(ctx context.Context, configPath, logLevel string) (*bootstrap.App, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	log := logger.NewZapAdapter(logger.New(cfg.Logging.Level, "console"))
	return bootstrap.New(ctx, cfg, log, bootstrap.Overrides{})
}

type rootOptions struct {
	configPath string
	logLevel   string
	domain     string
}

func newRootCmd(load appLoader) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "costli",
		Short:         "Cloud cost recommendations from a team of research agents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")
	root.PersistentFlags().StringVarP(&opts.domain, "domain", "d", "AWS", "Cloud provider (AWS, Azure, GCP)")

	open := func(cmd *cobra.Command) (*bootstrap.App, error) {
		return load(cmd.Context(), opts.configPath, opts.logLevel)
	}

	root.AddCommand(
		newAnalyzeCmd(opts, open),
		newPlanCmd(opts, open),
		newChatCmd(opts, open),
		newRegistryCmd(),
	)
	return root
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
