package expctl

import (
	"fmt"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/pkg/slurm"
)

// SlurmSet sets the resource spec of the experiment from a YAML or JSON file and saves the
// experiment.
func (a *App) SlurmSet(file string) error {
	e, err := a.load()
	if err != nil {
		return err
	}
	spec, err := slurm.ReadResourceSpecFile(file)
	if err != nil {
		return err
	}
	e.SetResources(*spec)
	if err := e.Save(); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Set slurm configuration of experiment %s\n", e.Name)
	return nil
}

// SlurmShow prints the resource spec of the experiment as YAML.
func (a *App) SlurmShow() error {
	e, err := a.load()
	if err != nil {
		return err
	}
	spec, ok := e.Resources()
	if !ok {
		return errors.WithStack(&expctlerrors.ErrMissingResourceSpec{Experiment: e.Name})
	}
	data, err := yaml.Marshal(spec)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = a.Out.Write(data)
	return errors.WithStack(err)
}
