// Package grid builds experiments from a declarative parameter sweep.
package grid

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	commonslices "github.com/armadaproject/expctl/internal/common/slices"
	"github.com/armadaproject/expctl/pkg/experiment"
	"github.com/armadaproject/expctl/pkg/slurm"
)

// Axis is one swept variable and the values it takes.
type Axis struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

// Declaration describes an experiment as the cartesian product of its axes, e.g.
//
//	name: td3_hopper
//	variables:
//	  - name: algorithm
//	    values: [TD3, DDPG]
//	  - name: seed
//	    values: [1, 2, 3]
//	configuration:
//	  env: Hopper-v4
//	slurm:
//	  pre_script: []
//	  ...
type Declaration struct {
	Name          string          `json:"name"`
	Variables     []Axis          `json:"variables"`
	Configuration map[string]any  `json:"configuration"`
	Slurm         json.RawMessage `json:"slurm,omitempty"`
}

// ReadDeclaration reads a YAML (or JSON) declaration from path.
func ReadDeclaration(path string) (*Declaration, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&expctlerrors.ErrNotFound{Type: "file", Value: path})
	} else if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseDeclaration(data)
}

// ParseDeclaration decodes and validates a declaration.
func ParseDeclaration(data []byte) (*Declaration, error) {
	d := &Declaration{}
	if err := yaml.UnmarshalStrict(data, d); err != nil {
		return nil, errors.Wrap(err, "error parsing experiment declaration")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate reports every problem of the declaration at once.
func (d *Declaration) Validate() error {
	var result *multierror.Error
	if d.Name == "" {
		result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
			Name:    "name",
			Value:   d.Name,
			Message: "experiment name not provided",
		})
	}
	seen := map[string]bool{}
	for i, axis := range d.Variables {
		if axis.Name == "" {
			result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
				Name:    fmt.Sprintf("variables[%d].name", i),
				Value:   axis.Name,
				Message: "variable name not provided",
			})
		} else if seen[axis.Name] {
			result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
				Name:    fmt.Sprintf("variables[%d].name", i),
				Value:   axis.Name,
				Message: "variable declared twice",
			})
		}
		seen[axis.Name] = true
		if len(axis.Values) == 0 {
			result = multierror.Append(result, &expctlerrors.ErrInvalidArgument{
				Name:    fmt.Sprintf("variables[%d].values", i),
				Value:   axis.Name,
				Message: "a variable needs at least one value",
			})
		}
	}
	return result.ErrorOrNil()
}

// Resources decodes the slurm block, if any.
func (d *Declaration) Resources() (*slurm.ResourceSpec, error) {
	if len(d.Slurm) == 0 || string(d.Slurm) == "null" {
		return nil, nil
	}
	spec, err := slurm.ParseResourceSpec(d.Slurm)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid slurm block")
	}
	if err := spec.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid slurm block")
	}
	return spec, nil
}

// Points returns the variable assignments of the grid. The first axis varies slowest.
func (d *Declaration) Points() []map[string]any {
	points := []map[string]any{{}}
	for _, axis := range d.Variables {
		next := make([]map[string]any, 0, len(points)*len(axis.Values))
		for _, point := range points {
			for _, value := range axis.Values {
				p := maps.Clone(point)
				p[axis.Name] = value
				next = append(next, p)
			}
		}
		points = next
	}
	return points
}

// Build creates the experiment of the declaration under root, one job per grid point.
// The configuration of a job is the base configuration with the job's variables set at
// the top level. The experiment is not saved.
func (d *Declaration) Build(root string) (*experiment.Experiment, error) {
	resources, err := d.Resources()
	if err != nil {
		return nil, err
	}
	names := commonslices.Map(d.Variables, func(a Axis) string { return a.Name })
	e, err := experiment.New(names, d.Name, root, resources)
	if err != nil {
		return nil, err
	}
	for _, point := range d.Points() {
		configuration := maps.Clone(d.Configuration)
		if configuration == nil {
			configuration = map[string]any{}
		}
		for k, v := range point {
			configuration[k] = v
		}
		if _, err := e.AddJob(point, configuration); err != nil {
			return nil, err
		}
	}
	return e, nil
}
