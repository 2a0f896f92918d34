package experiment

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

// Runner performs the computation of one job. Errors are returned to the caller of RunId
// unchanged.
type Runner func(data *ExperimentData) error

// ExperimentData is the view of one job handed to a Runner.
type ExperimentData struct {
	Id            int
	Variables     map[string]any
	Configuration *Configuration

	experiment       *Experiment
	generateDefaults bool
}

func newExperimentData(e *Experiment, id int, generateDefaults bool) *ExperimentData {
	job := e.Jobs[id]
	return &ExperimentData{
		Id:               id,
		Variables:        maps.Clone(job.Variables),
		Configuration:    newConfiguration(job.Configuration, generateDefaults),
		experiment:       e,
		generateDefaults: generateDefaults,
	}
}

// NewTemplateData returns the view of job id with its configuration in template mode,
// without consulting the pass filter. Results saved through it are logged, not written.
func NewTemplateData(e *Experiment, id int) (*ExperimentData, error) {
	if id < 0 || id >= len(e.Jobs) {
		return nil, errors.WithStack(&expctlerrors.ErrInvalidId{
			Id:      id,
			Message: fmt.Sprintf("experiment %s has %d jobs", e.Name, len(e.Jobs)),
		})
	}
	return newExperimentData(e, id, true), nil
}

// Experiment returns the experiment the job belongs to.
func (d *ExperimentData) Experiment() *Experiment {
	return d.experiment
}

// SaveResults stores data as the result filename of this job. See Experiment.SaveResults.
func (d *ExperimentData) SaveResults(filename string, saver Saver, data any, override bool) error {
	if d.generateDefaults {
		log.Infof("Save %d_%s -> %v", d.Id, filename, data)
		return nil
	}
	return d.experiment.SaveResults(d.Id, filename, saver, data, override)
}

// MarshalJSON encodes the view as the JSON document job commands read on stdin.
func (d *ExperimentData) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Experiment    string         `json:"experiment"`
		Id            int            `json:"id"`
		Variables     map[string]any `json:"variables"`
		Configuration map[string]any `json:"configuration"`
	}{
		Experiment:    d.experiment.Name,
		Id:            d.Id,
		Variables:     d.Variables,
		Configuration: d.Configuration.Map(),
	})
}

// String is the multi-line description printed by the fake runner.
func (d *ExperimentData) String() string {
	variables, _ := json.Marshal(d.Variables)
	return fmt.Sprintf("Experiment: %s\n\tid: %d\n\tvariables: %s\n\tconfiguration: %s",
		d.experiment.Name, d.Id, variables, d.Configuration)
}

// RunId calls runner with the view of job id. The id must be part of the pass filter and
// index a job of the experiment; otherwise ErrInvalidId is returned and runner isn't called.
func (e *Experiment) RunId(id int, runner Runner) error {
	allowedIds, err := e.GetFilteredIds()
	if err != nil {
		return err
	}
	if !slices.Contains(allowedIds, id) {
		return errors.WithStack(&expctlerrors.ErrInvalidId{Id: id})
	}
	if id < 0 || id >= len(e.Jobs) {
		return errors.WithStack(&expctlerrors.ErrInvalidId{
			Id:      id,
			Message: fmt.Sprintf("pass filter is stale, experiment %s has %d jobs", e.Name, len(e.Jobs)),
		})
	}
	log.WithField("experiment", e.Name).WithField("jobId", id).Debug("Dispatching job")
	return runner(newExperimentData(e, id, false))
}

// ResolveTask maps the index of a job array task to the job id at that position of the
// pass filter.
func (e *Experiment) ResolveTask(index int) (int, error) {
	allowedIds, err := e.GetFilteredIds()
	if err != nil {
		return -1, err
	}
	if index < 0 || index >= len(allowedIds) {
		return -1, errors.WithStack(&expctlerrors.ErrInvalidId{
			Id:      index,
			Message: fmt.Sprintf("task index out of range, the pass filter has %d jobs", len(allowedIds)),
		})
	}
	return allowedIds[index], nil
}

// RunTask runs the job at position index of the pass filter, which is how array task
// indices 0..n-1 of a generated batch script map to job ids.
func (e *Experiment) RunTask(index int, runner Runner) error {
	id, err := e.ResolveTask(index)
	if err != nil {
		return err
	}
	return e.RunId(id, runner)
}
