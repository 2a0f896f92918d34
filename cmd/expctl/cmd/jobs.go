package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

func jobsCmdWithApp(a *expctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List the jobs of the experiment",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Jobs()
		},
	}
}
