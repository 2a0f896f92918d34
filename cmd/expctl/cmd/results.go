package cmd

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/expctl"
)

func resultsCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Store and retrieve the results of jobs",
		Long: `Store and retrieve the results of jobs. Result <file> of job <id> is stored as
<experiment-path>/<experiment-name>/<id>_<file>.`,
	}
	cmd.AddCommand(
		resultsPutCmdWithApp(a),
		resultsGetCmdWithApp(a),
		resultsStatusCmdWithApp(a),
	)
	return cmd
}

func parseJobId(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "id",
			Value:   s,
			Message: "job ids are integers",
		})
	}
	return id, nil
}

func resultsPutCmdWithApp(a *expctl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <id> <file> <source>",
		Short: "Store the content of source as result file of job id",
		Args:  cobra.ExactArgs(3),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobId(args[0])
			if err != nil {
				return err
			}
			override, err := cmd.Flags().GetBool("override")
			if err != nil {
				return err
			}
			return a.ResultsPut(id, args[1], args[2], override)
		},
	}
	cmd.Flags().Bool("override", false, "replace an existing result")
	return cmd
}

func resultsGetCmdWithApp(a *expctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id> <file>",
		Short: "Print result file of job id",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseJobId(args[0])
			if err != nil {
				return err
			}
			return a.ResultsGet(id, args[1])
		},
	}
}

func resultsStatusCmdWithApp(a *expctl.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <file>",
		Short: "Report which jobs of the pass filter lack result file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ResultsStatus(args[0])
		},
	}
}
