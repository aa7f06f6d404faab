package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCollectCommand(opts *rootOptions) *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Search, annotate and store new articles, then rebuild",
		Long: `collect runs one acquisition pass: search the configured provider, scrape
each article, annotate it, write a partial collection and rebuild the
canonical dataset. With --every the pass repeats until interrupted; runs
never overlap.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			if cmd.Flags().Changed("every") {
				return application.CollectEvery(cmd.Context(), every)
			}

			result, err := application.Collect(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "candidates=%d known=%d collected=%d rejected=%d failed=%d\n",
				result.Candidates, result.Known, len(result.Collected), result.Rejected, result.Failed)
			if result.Partial != "" {
				fmt.Fprintf(out, "partial=%s\n", result.Partial)
			}
			return result.Report.Print(out)
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "repeat collection on this interval (0 uses scheduler.interval)")
	return cmd
}
