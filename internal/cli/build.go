package cli

import (
	"github.com/spf13/cobra"
)

func newBuildCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Merge every partial collection into the canonical dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.application(cmd.Context())
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Build(cmd.Context())
			if err != nil {
				return err
			}
			return report.Print(cmd.OutOrStdout())
		},
	}
}
