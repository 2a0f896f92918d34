package expctl

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/grid"
	"github.com/armadaproject/expctl/pkg/experiment"
)

// Create builds the experiment declared in declarationFile under the experiment path and
// saves it. The experiment is named after the declaration. An existing experiment is
// only replaced if overwrite is set.
func (a *App) Create(declarationFile string, overwrite bool) error {
	if a.Params.ExperimentPath == "" {
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "experiment-path",
			Value:   a.Params.ExperimentPath,
			Message: "not provided",
		})
	}
	declaration, err := grid.ReadDeclaration(declarationFile)
	if err != nil {
		return err
	}
	if a.Params.ExperimentName != "" && a.Params.ExperimentName != declaration.Name {
		log.Warnf("Ignoring experiment name %s, %s declares experiment %s",
			a.Params.ExperimentName, declarationFile, declaration.Name)
	}

	e, err := declaration.Build(a.Params.ExperimentPath)
	if err != nil {
		return err
	}
	configFile := filepath.Join(e.BaseDir(), experiment.ConfigFile)
	if _, err := os.Stat(configFile); err == nil && !overwrite {
		return errors.WithStack(&expctlerrors.ErrAlreadyExists{
			Type:    "experiment",
			Value:   e.Name,
			Message: "use --overwrite to replace it",
		})
	}
	if err := e.Save(); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Created experiment %s with %d jobs in %s\n", e.Name, len(e.Jobs), e.BaseDir())
	return nil
}
