/*
Package experiment keeps the books of a batch experiment: the jobs it is made of, the subset of
jobs that is allowed to run, and the results each job produced.

An Experiment is created by a controlling process, filled with jobs and saved under
<root>/<name>. The same process selects the jobs to run with SavePassFilter and renders a SLURM
job array sized to that selection. Each array task then loads the experiment read-only and
calls RunTask (or RunId) with a Runner, which receives an ExperimentData view of its job and
stores its output through the overwrite-guarded result store.

Job ids are positions in the experiment's job list. Jobs are only ever appended, so an id stays
valid for the lifetime of the experiment.

Nothing in this package locks files: all writes are expected to happen before the workers
start, and workers only write results under their own job id.
*/
package experiment
