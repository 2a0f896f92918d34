package expctl

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/expctl/internal/ledger"
)

// Runs lists the runs recorded in the ledger of the experiment, oldest first. A non-nil
// jobId restricts the list to one job.
func (a *App) Runs(ctx context.Context, jobId *int) error {
	e, err := a.load()
	if err != nil {
		return err
	}
	path := ledger.Path(e.BaseDir())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(a.Out, "No runs recorded for experiment %s\n", e.Name)
		return nil
	} else if err != nil {
		return errors.WithStack(err)
	}

	l, err := ledger.Open(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Close(); err != nil {
			log.WithError(err).Warn("Error closing ledger")
		}
	}()
	var runs []*ledger.Run
	if jobId != nil {
		runs, err = l.ForJob(ctx, *jobId)
	} else {
		runs, err = l.List(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "RUN ID\tJOB\tTASK\tHOST\tSTATE\tSTARTED\tDURATION\tERROR")
	for _, run := range runs {
		task := "-"
		if run.TaskIndex != ledger.NoTask {
			task = fmt.Sprint(run.TaskIndex)
		}
		duration := "-"
		if run.State != ledger.Running {
			duration = run.Duration().Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.RunId, run.JobId, task, run.Host, run.State,
			run.StartedAt.Format(time.RFC3339), duration, run.Error)
	}
	return nil
}
