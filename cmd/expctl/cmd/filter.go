package cmd

import (
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/expctl"
)

func filterCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter [expression]",
		Short: "Select the jobs allowed to run",
		Long: `Select the jobs allowed to run and save them as the pass filter of the experiment.

Jobs are selected by an expression over their variables, e.g.

  expctl filter 'algorithm == "TD3" && seed <= 2'

or with one of --all, --ids and --random.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := expctl.FilterOptions{}
			if len(args) == 1 {
				opts.Expression = args[0]
			}
			var err error
			if opts.All, err = cmd.Flags().GetBool("all"); err != nil {
				return err
			}
			if cmd.Flags().Changed("ids") {
				if opts.Ids, err = cmd.Flags().GetIntSlice("ids"); err != nil {
					return err
				}
			}
			if opts.Random, err = cmd.Flags().GetInt("random"); err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				seed, err := cmd.Flags().GetInt64("seed")
				if err != nil {
					return err
				}
				opts.Seed = &seed
			}
			return a.Filter(opts)
		},
	}
	cmd.Flags().Bool("all", false, "allow every job")
	cmd.Flags().IntSlice("ids", nil, "allow these job ids, in this order")
	cmd.Flags().Int("random", 0, "allow this many jobs picked at random")
	cmd.Flags().Int64("seed", 0, "seed of --random; drawn at random if not set")
	return cmd
}
