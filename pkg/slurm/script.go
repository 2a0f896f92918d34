package slurm

import (
	"fmt"
	"strings"
)

// TaskIdVariable is the environment variable SLURM sets to the index of each array task.
const TaskIdVariable = "$SLURM_ARRAY_TASK_ID"

// ArrayJob describes one submission of an experiment as a job array.
type ArrayJob struct {
	// Directory the scheduler writes task stdout/stderr to, normally the experiment directory.
	BasePath string
	// Root directory and name the worker uses to load the experiment.
	ExperimentRoot string
	ExperimentName string
	// Name of the SLURM job.
	JobName string
	// Number of array tasks; the array range is 0..NTasks-1.
	NTasks int
}

// argumentSeparator ends the runner's own flags; what follows is passed on to the job command.
const argumentSeparator = " --"

// invocation appends the task flags to runner. If runner contains a " -- " separator (or
// ends with " --") the flags go before it, so they reach the runner rather than its command.
func invocation(runner string, job ArrayJob) string {
	flags := fmt.Sprintf("--job-id %s --experiment-path %s --experiment-name %s",
		TaskIdVariable, job.ExperimentRoot, job.ExperimentName)
	i := strings.Index(runner, argumentSeparator+" ")
	if i < 0 && strings.HasSuffix(runner, argumentSeparator) {
		i = len(runner) - len(argumentSeparator)
	}
	if i < 0 {
		return runner + " " + flags
	}
	return runner[:i] + " " + flags + runner[i:]
}

// JobArrayScript renders the batch script for job.
// Field values are interpolated as-is; nothing is quoted or escaped.
func (r ResourceSpec) JobArrayScript(job ArrayJob) string {
	var sb strings.Builder
	sb.WriteString("#!/bin/bash\n")
	fmt.Fprintf(&sb, "#SBATCH --job-name=%s\n", job.JobName)
	fmt.Fprintf(&sb, "#SBATCH --output=%s/%%x_%%A_%%a.out\n", job.BasePath)
	fmt.Fprintf(&sb, "#SBATCH --error=%s/%%x_%%A_%%a.err\n", job.BasePath)
	fmt.Fprintf(&sb, "#SBATCH --cpus-per-task=%d\n", r.CPUs)
	fmt.Fprintf(&sb, "#SBATCH --gpus-per-task=%d\n", r.GPUs)
	fmt.Fprintf(&sb, "#SBATCH --mem=%s\n", r.Memory)
	fmt.Fprintf(&sb, "#SBATCH --time=%s\n", r.Time)
	fmt.Fprintf(&sb, "#SBATCH --array=0-%d\n", job.NTasks-1)
	sb.WriteString("\n")

	for _, line := range r.PreScript {
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(invocation(r.JobRunner, job) + "\n")

	for _, line := range r.PostScript {
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
