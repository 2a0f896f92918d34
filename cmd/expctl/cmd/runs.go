package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

func runsCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the recorded runs of the experiment's jobs",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobId *int
			if cmd.Flags().Changed("job") {
				id, err := cmd.Flags().GetInt("job")
				if err != nil {
					return err
				}
				jobId = &id
			}
			return a.Runs(context.Background(), jobId)
		},
	}
	cmd.Flags().Int("job", 0, "only list the runs of this job id")
	return cmd
}
