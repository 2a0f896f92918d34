package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

func runCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run --job-id <n> [flags] -- <command> [args...]",
		Short: "Run one job of the experiment",
		Long: `Run one job of the experiment. This is what each task of the job array script does.

--job-id is the index of the job array task, i.e. the position of the job in the pass
filter; with --by-id it is the job id itself. Jobs outside the pass filter are refused.

The command reads the job as JSON on stdin:

  {"experiment": "...", "id": 3, "variables": {...}, "configuration": {...}}

and finds the experiment in the EXPCTL_JOB_ID, EXPCTL_EXPERIMENT_PATH,
EXPCTL_EXPERIMENT_NAME and EXPCTL_BASE_DIR environment variables. Its exit status is the
outcome of the job. Runs are recorded in the ledger of the experiment (see "expctl runs").`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := expctl.RunOptions{Command: args}
			var err error
			if opts.JobId, err = cmd.Flags().GetInt("job-id"); err != nil {
				return err
			}
			if opts.ById, err = cmd.Flags().GetBool("by-id"); err != nil {
				return err
			}
			if opts.Fake, err = cmd.Flags().GetBool("fake"); err != nil {
				return err
			}
			if opts.MetricsDir, err = cmd.Flags().GetString("metrics-dir"); err != nil {
				return err
			}
			if opts.NoLedger, err = cmd.Flags().GetBool("no-ledger"); err != nil {
				return err
			}

			// Create a context that is cancelled on SIGINT/SIGTERM.
			// Ensures the job command is killed on ctrl-C or when SLURM cancels the task.
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			stopSignal := make(chan os.Signal, 1)
			signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(stopSignal)
			go func() {
				select {
				case <-ctx.Done():
					return
				case <-stopSignal:
					cancel()
				}
			}()

			return a.Run(ctx, opts)
		},
	}
	cmd.Flags().Int("job-id", 0, "job array task index, or job id with --by-id")
	cmd.Flags().Bool("by-id", false, "treat --job-id as a job id")
	cmd.Flags().Bool("fake", false, "print the job and save its configuration as results.json instead of running a command")
	cmd.Flags().String("metrics-dir", "", "write job metrics for the node exporter textfile collector to this directory")
	cmd.Flags().Bool("no-ledger", false, "don't record the run in the experiment's ledger")
	_ = cmd.MarkFlagRequired("job-id")
	return cmd
}
