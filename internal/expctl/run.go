package expctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/ledger"
	"github.com/armadaproject/expctl/internal/metrics"
	"github.com/armadaproject/expctl/pkg/experiment"
)

// Environment of the command run for a job.
const (
	JobIdEnvVar          = "EXPCTL_JOB_ID"
	ExperimentPathEnvVar = "EXPCTL_EXPERIMENT_PATH"
	ExperimentNameEnvVar = "EXPCTL_EXPERIMENT_NAME"
	BaseDirEnvVar        = "EXPCTL_BASE_DIR"
)

// RunOptions selects the job to run and how to run it.
type RunOptions struct {
	// Index of the job array task, or a job id if ById is set.
	JobId int
	ById  bool
	// Run the fake runner instead of Command.
	Fake bool
	// Command run for the job. It reads the job as JSON on stdin.
	Command []string
	// If set, job metrics are written there in the Prometheus text format.
	MetricsDir string
	// Don't record the run in the experiment's ledger.
	NoLedger bool
}

// Run runs one job of the experiment. Only jobs of the pass filter can run.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if !opts.Fake && len(opts.Command) == 0 {
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "command",
			Value:   opts.Command,
			Message: "no command to run the job with, pass one after -- or use --fake",
		})
	}
	e, err := a.load()
	if err != nil {
		return err
	}

	id, taskIndex := opts.JobId, ledger.NoTask
	if !opts.ById {
		taskIndex = opts.JobId
		if id, err = e.ResolveTask(opts.JobId); err != nil {
			return err
		}
	}

	var runner experiment.Runner
	if opts.Fake {
		runner = experiment.FakeRunner(a.Out)
	} else {
		runner = a.commandRunner(ctx, opts.Command)
	}

	var l *ledger.Ledger
	if !opts.NoLedger {
		if l, err = ledger.Open(ctx, ledger.Path(e.BaseDir())); err != nil {
			return err
		}
		defer func() {
			if err := l.Close(); err != nil {
				log.WithError(err).Warn("Error closing ledger")
			}
		}()
	}
	return e.RunId(id, a.recordingRunner(ctx, e, runner, l, taskIndex, opts.MetricsDir))
}

// recordingRunner wraps runner so the run is recorded in the ledger and metrics.
// Failing to record is logged but doesn't fail the job.
func (a *App) recordingRunner(ctx context.Context, e *experiment.Experiment, runner experiment.Runner, l *ledger.Ledger, taskIndex int, metricsDir string) experiment.Runner {
	return func(data *experiment.ExperimentData) error {
		logger := log.WithField("experiment", e.Name).WithField("jobId", data.Id)
		start := time.Now()
		var run *ledger.Run
		if l != nil {
			var err error
			if run, err = l.Start(ctx, data.Id, taskIndex); err != nil {
				logger.WithError(err).Warn("Could not record the start of the job")
			}
		}

		runErr := runner(data)

		end := time.Now()
		if run != nil {
			if err := l.Finish(ctx, run, runErr); err != nil {
				logger.WithError(err).Warn("Could not record the end of the job")
			}
		}
		if metricsDir != "" {
			m := metrics.NewJobMetrics(e.Name, data.Id, taskIndex)
			m.Record(start, end, runErr)
			if err := m.WriteToDir(metricsDir); err != nil {
				logger.WithError(err).Warn("Could not write job metrics")
			}
		}
		if runErr != nil {
			logger.WithError(runErr).Errorf("Job failed after %s", end.Sub(start))
		} else {
			logger.Debugf("Job succeeded after %s", end.Sub(start))
		}
		return runErr
	}
}

// commandRunner runs command for the job. The job is written as JSON to the command's
// stdin and described by the EXPCTL_* environment variables; the command's stdout goes to
// the app output.
func (a *App) commandRunner(ctx context.Context, command []string) experiment.Runner {
	return func(data *experiment.ExperimentData) error {
		input, err := json.Marshal(data)
		if err != nil {
			return errors.WithStack(err)
		}
		e := data.Experiment()
		cmd := exec.CommandContext(ctx, command[0], command[1:]...)
		cmd.Stdin = bytes.NewReader(input)
		cmd.Stdout = a.Out
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(),
			fmt.Sprintf("%s=%s", JobIdEnvVar, strconv.Itoa(data.Id)),
			fmt.Sprintf("%s=%s", ExperimentPathEnvVar, e.Root()),
			fmt.Sprintf("%s=%s", ExperimentNameEnvVar, e.Name),
			fmt.Sprintf("%s=%s", BaseDirEnvVar, e.BaseDir()),
		)
		log.Debugf("Running %v for job %d", command, data.Id)
		if err := cmd.Run(); err != nil {
			return errors.Wrapf(err, "job %d: %s failed", data.Id, command[0])
		}
		return nil
	}
}
