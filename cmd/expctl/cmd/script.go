package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
	"github.com/armadaproject/expctl/pkg/experiment"
)

func scriptCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Write the SLURM job array script of the experiment",
		Long: `Write the SLURM job array script of the experiment to
<experiment-path>/<experiment-name>/slurm_script.sh. Submit it with sbatch.

Task i of the array runs the i-th job of the pass filter.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := experiment.ScriptOptions{}
			var err error
			if opts.JobName, err = cmd.Flags().GetString("job-name"); err != nil {
				return err
			}
			if opts.NTasks, err = cmd.Flags().GetInt("n-tasks"); err != nil {
				return err
			}
			quiet, err := cmd.Flags().GetBool("quiet")
			if err != nil {
				return err
			}
			return a.Script(opts, quiet)
		},
	}
	cmd.Flags().String("job-name", "", "SLURM job name (default is the experiment name)")
	cmd.Flags().Int("n-tasks", 0, "number of array tasks (default is the size of the pass filter)")
	cmd.Flags().BoolP("quiet", "q", false, "don't print the script")
	return cmd
}
