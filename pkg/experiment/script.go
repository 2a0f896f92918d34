package experiment

import (
	"os"

	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/pkg/slurm"
)

// ScriptOptions tune the generated job array script.
type ScriptOptions struct {
	// Defaults to the experiment name.
	JobName string
	// Number of array tasks. Zero means one task per job of the pass filter.
	NTasks int
}

// SlurmJobArrayScript renders the job array script of the experiment without writing it.
func (e *Experiment) SlurmJobArrayScript(opts ScriptOptions) (string, error) {
	if e.resources == nil {
		return "", errors.WithStack(&expctlerrors.ErrMissingResourceSpec{Experiment: e.Name})
	}
	nTasks := opts.NTasks
	if nTasks == 0 {
		ids, err := e.GetFilteredIds()
		if err != nil {
			return "", err
		}
		nTasks = len(ids)
	}
	if nTasks < 1 {
		return "", errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "n_tasks",
			Value:   nTasks,
			Message: "the job array needs at least one task",
		})
	}
	jobName := opts.JobName
	if jobName == "" {
		jobName = e.Name
	}
	return e.resources.JobArrayScript(slurm.ArrayJob{
		BasePath:       e.BaseDir(),
		ExperimentRoot: e.root,
		ExperimentName: e.Name,
		JobName:        jobName,
		NTasks:         nTasks,
	}), nil
}

// CreateSlurmJobArrayScript renders the job array script and writes it to
// <base>/slurm_script.sh. The script is returned so callers can echo it.
func (e *Experiment) CreateSlurmJobArrayScript(opts ScriptOptions) (string, error) {
	script, err := e.SlurmJobArrayScript(opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.BaseDir(), 0o755); err != nil {
		return "", errors.WithStack(err)
	}
	if err := os.WriteFile(e.path(SlurmScriptFile), []byte(script), 0o755); err != nil {
		return "", errors.Wrapf(err, "error writing job array script of experiment %s", e.Name)
	}
	return script, nil
}

// ScriptPath returns where CreateSlurmJobArrayScript writes the script.
func (e *Experiment) ScriptPath() string {
	return e.path(SlurmScriptFile)
}
