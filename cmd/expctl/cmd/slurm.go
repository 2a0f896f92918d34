package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

func slurmCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slurm",
		Short: "Manage the SLURM resources of the experiment",
	}
	cmd.AddCommand(
		slurmSetCmdWithApp(a),
		slurmShowCmdWithApp(a),
	)
	return cmd
}

func slurmSetCmdWithApp(a *expctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <file>",
		Short: "Set the SLURM resources from a YAML or JSON file",
		Long: `Set the SLURM resources from a YAML or JSON file. Every key is required:

pre_script: ["module load python"]
post_script: []
n_gpus: 1
n_cpus: 4
memory: 8G
time: "01:00:00"
job_runner: expctl run -- python train.py`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.SlurmSet(args[0])
		},
	}
}

func slurmShowCmdWithApp(a *expctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the SLURM resources of the experiment",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.SlurmShow()
		},
	}
}
