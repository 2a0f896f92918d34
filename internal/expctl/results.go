package expctl

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/pkg/experiment"
)

// ResultsPut stores the content of source as result filename of job id.
func (a *App) ResultsPut(id int, filename string, source string, override bool) error {
	e, err := a.load()
	if err != nil {
		return err
	}
	if id < 0 || id >= len(e.Jobs) {
		return errors.WithStack(&expctlerrors.ErrInvalidId{
			Id:      id,
			Message: fmt.Sprintf("experiment %s has %d jobs", e.Name, len(e.Jobs)),
		})
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := e.SaveResults(id, filename, experiment.RawSaver, data, override); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Saved %s\n", e.ResultPath(id, filename))
	return nil
}

// ResultsGet copies result filename of job id to the app output.
func (a *App) ResultsGet(id int, filename string) error {
	e, err := a.load()
	if err != nil {
		return err
	}
	data, err := e.GetResults(id, filename, experiment.RawLoader)
	if err != nil {
		return err
	}
	_, err = a.Out.Write(data.([]byte))
	return errors.WithStack(err)
}

// ResultsStatus reports which jobs of the pass filter still lack result filename.
func (a *App) ResultsStatus(filename string) error {
	e, err := a.load()
	if err != nil {
		return err
	}
	ids, err := e.GetFilteredIds()
	if err != nil {
		return err
	}
	missing, err := e.MissingResults(filename)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		fmt.Fprintf(a.Out, "All %d results %s are present\n", len(ids), filename)
		return nil
	}
	fmt.Fprintf(a.Out, "%d of %d results %s are present, missing: %v\n", len(ids)-len(missing), len(ids), filename, missing)
	return nil
}
