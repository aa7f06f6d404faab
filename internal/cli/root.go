// Package cli holds the newssignal command tree.
package cli

import (
	"context"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"NewsSignal/internal/app"
	"NewsSignal/internal/config"
	"NewsSignal/internal/logging"
)

type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "newssignal",
		Short: "Collect, annotate and merge real-estate news into one dataset",
		Long: `newssignal searches news, asks a summarization service for a summary and a
market signal per article, stores each run as a partial collection and merges
every partial collection into one canonical, deduplicated dataset.

Example usage:
  newssignal build                       # Rebuild the canonical dataset
  newssignal collect                     # Collect once, then rebuild
  newssignal collect --every 6h          # Keep collecting on an interval
  newssignal show --signal BULL --limit 20`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg = config.Load(opts.configPath)
			if opts.logLevel != "" {
				opts.cfg.Logging.Level = opts.logLevel
			}
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), opts.cfg.Logging.Level, opts.cfg.Logging.Format)
			if opts.noColor {
				color.NoColor = true
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $NEWSSIGNAL_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newBuildCommand(opts), newCollectCommand(opts), newShowCommand(opts))
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) application(ctx context.Context) (*app.Application, error) {
	return app.New(ctx, o.cfg, o.logger)
}
