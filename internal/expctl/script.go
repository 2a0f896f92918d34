package expctl

import (
	"fmt"

	"github.com/armadaproject/expctl/pkg/experiment"
)

// Script writes the SLURM job array script of the experiment and, unless quiet, prints it.
func (a *App) Script(opts experiment.ScriptOptions, quiet bool) error {
	e, err := a.load()
	if err != nil {
		return err
	}
	script, err := e.CreateSlurmJobArrayScript(opts)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprint(a.Out, script)
	}
	fmt.Fprintf(a.Out, "Wrote %s\n", e.ScriptPath())
	return nil
}
