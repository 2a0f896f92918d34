package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	return rootCmdWithApp(expctl.New())
}

// Takes a caller-supplied app struct; useful for testing.
func rootCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expctl",
		Short: "expctl manages parameter sweep experiments and runs them as SLURM job arrays.",
		Long: `expctl manages parameter sweep experiments and runs them as SLURM job arrays.

An experiment is a registry of jobs, each a set of variable values with a run
configuration, stored in <experiment-path>/<experiment-name>. A pass filter selects
which jobs may run; the generated job array script runs one of them per task.

Persistent config can be saved in a config file so it doesn't have to be specified every command.

Example structure:
experimentPath: /scratch/me/experiments
experimentName: td3_hopper

The location of this file can be passed in using the --config argument.
If not provided, $HOME/.expctl.yaml is used. The EXPCTL_EXPERIMENT_PATH and
EXPCTL_EXPERIMENT_NAME environment variables are also honoured; they are set for
commands started by "expctl run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addPersistentFlags(cmd)

	cmd.AddCommand(
		createCmdWithApp(a),
		jobsCmdWithApp(a),
		filterCmdWithApp(a),
		scriptCmdWithApp(a),
		slurmCmdWithApp(a),
		runCmdWithApp(a),
		resultsCmdWithApp(a),
		runsCmdWithApp(a),
		versionCmdWithApp(a),
	)

	return cmd
}
