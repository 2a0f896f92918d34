// Package slurm holds the compute resource request of an experiment and renders it
// into a SLURM batch-array submission script.
package slurm

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	commonmaps "github.com/armadaproject/expctl/internal/common/maps"
)

// ResourceSpec is the resource request of every task of the job array, together with the
// shell lines run before and after the job runner.
//
// A ResourceSpec is a value: the experiment keeps its own copy and hands out copies, so a
// spec can't change underneath a saved experiment.
type ResourceSpec struct {
	PreScript  []string `json:"pre_script"`
	PostScript []string `json:"post_script"`
	GPUs       int      `json:"n_gpus"`
	CPUs       int      `json:"n_cpus"`
	Memory     string   `json:"memory"`
	Time       string   `json:"time"`
	JobRunner  string   `json:"job_runner"`
}

// resourceSpecKeys are the keys of the persisted form; all of them are required on load.
var resourceSpecKeys = []string{"pre_script", "post_script", "n_gpus", "n_cpus", "memory", "time", "job_runner"}

// Copy returns a deep copy of r.
func (r ResourceSpec) Copy() ResourceSpec {
	r.PreScript = slices.Clone(r.PreScript)
	r.PostScript = slices.Clone(r.PostScript)
	return r
}

// Validate checks that counts are non-negative and that a job runner is set.
// All problems are reported together.
func (r ResourceSpec) Validate() error {
	var result *multierror.Error
	if r.GPUs < 0 {
		result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
			Name:    "n_gpus",
			Value:   r.GPUs,
			Message: "must be non-negative",
		})
	}
	if r.CPUs < 0 {
		result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
			Name:    "n_cpus",
			Value:   r.CPUs,
			Message: "must be non-negative",
		})
	}
	if r.JobRunner == "" {
		result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
			Name:    "job_runner",
			Value:   r.JobRunner,
			Message: "not provided",
		})
	}
	return result.ErrorOrNil()
}

// Save writes r to path as a flat JSON object.
func (r ResourceSpec) Save(path string) error {
	data, err := json.Marshal(r.withNonNilScripts())
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "error saving slurm configuration to %s", path)
	}
	return nil
}

// LoadResourceSpec reads a ResourceSpec saved with Save.
func LoadResourceSpec(path string) (*ResourceSpec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&expctlerrors.ErrNotFound{
			Type:  "slurm configuration",
			Value: path,
		})
	} else if err != nil {
		return nil, errors.Wrapf(err, "error reading slurm configuration %s", path)
	}
	spec, err := ParseResourceSpec(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid slurm configuration %s", path)
	}
	return spec, nil
}

// ParseResourceSpec decodes the flat JSON form of a ResourceSpec.
// Every field must be present and unknown fields are rejected; there are no defaults.
func ParseResourceSpec(data []byte) (*ResourceSpec, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithStack(err)
	}
	var result *multierror.Error
	for _, key := range resourceSpecKeys {
		if _, ok := raw[key]; !ok {
			result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
				Name:    key,
				Value:   "<missing>",
				Message: "required field missing",
			})
		}
	}
	for _, key := range commonmaps.SortedKeys(raw) {
		if !slices.Contains(resourceSpecKeys, key) {
			result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
				Name:    key,
				Value:   string(raw[key]),
				Message: "unknown field",
			})
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	spec := &ResourceSpec{}
	if err := decoder.Decode(spec); err != nil {
		return nil, errors.WithStack(err)
	}
	return spec, nil
}

// ReadResourceSpecFile reads a user supplied resource spec in YAML or JSON and validates it.
func ReadResourceSpecFile(path string) (*ResourceSpec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&expctlerrors.ErrNotFound{
			Type:  "file",
			Value: path,
		})
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %s", path)
	}
	spec, err := ParseResourceSpec(jsonData)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid resource spec %s", path)
	}
	if err := spec.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid resource spec %s", path)
	}
	return spec, nil
}

func (r ResourceSpec) withNonNilScripts() ResourceSpec {
	if r.PreScript == nil {
		r.PreScript = []string{}
	}
	if r.PostScript == nil {
		r.PostScript = []string{}
	}
	return r
}
