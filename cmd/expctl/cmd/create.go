package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

func createCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <declaration.yaml>",
		Short: "Create an experiment from a grid declaration",
		Long: `Create an experiment from a grid declaration. Jobs are the cartesian product of the
declared variables, the first variable varying slowest. Example:

name: td3_hopper
variables:
  - name: algorithm
    values: [TD3, DDPG]
  - name: seed
    values: [1, 2, 3]
configuration:
  env: Hopper-v4
slurm:
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
			overwrite, err := cmd.Flags().GetBool("overwrite")
			if err != nil {
				return err
			}
			return a.Create(args[0], overwrite)
		},
	}
	cmd.Flags().Bool("overwrite", false, "replace an existing experiment of the same name")
	return cmd
}
