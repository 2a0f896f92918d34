package experiment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

// ResultPath returns where result filename of job id is stored: <base>/<id>_<filename>.
func (e *Experiment) ResultPath(id int, filename string) string {
	return filepath.Join(e.BaseDir(), fmt.Sprintf("%d_%s", id, filename))
}

// SaveResults stores data as the result filename of job id using saver. It fails with
// ErrAlreadyExists if the result is already there, unless override is set.
func (e *Experiment) SaveResults(id int, filename string, saver Saver, data any, override bool) error {
	path := e.ResultPath(id, filename)
	if !override {
		exists, err := fileExists(path)
		if err != nil {
			return err
		}
		if exists {
			return errors.WithStack(&expctlerrors.ErrAlreadyExists{
				Type:    "result",
				Value:   path,
				Message: "use override to overwrite it",
			})
		}
	}
	if err := saver(path, data); err != nil {
		return errors.WithMessagef(err, "error saving result %s of job %d", filename, id)
	}
	return nil
}

// GetResults reads result filename of job id with loader.
func (e *Experiment) GetResults(id int, filename string, loader Loader) (any, error) {
	path := e.ResultPath(id, filename)
	exists, err := fileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.WithStack(&expctlerrors.ErrNotFound{
			Type:  "result",
			Value: path,
		})
	}
	data, err := loader(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "error loading result %s of job %d", filename, id)
	}
	return data, nil
}

// MissingResults returns the ids of the pass filter that have no result filename yet.
func (e *Experiment) MissingResults(filename string) ([]int, error) {
	ids, err := e.GetFilteredIds()
	if err != nil {
		return nil, err
	}
	missing := []int{}
	for _, id := range ids {
		exists, err := fileExists(e.ResultPath(id, filename))
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// AreAllResultsPresent reports whether every job of the pass filter has stored result filename.
func (e *Experiment) AreAllResultsPresent(filename string) (bool, error) {
	missing, err := e.MissingResults(filename)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.WithStack(err)
}
