package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

type passFilterDocument struct {
	Jobs []int `json:"jobs"`
}

// SavePassFilter persists the ids of the jobs allowed to run, in the given order, to
// <base>/pass_filter.json. A previous pass filter is replaced.
//
// Every id must index a job of the experiment; if any doesn't, nothing is written and an
// error listing all offending ids is returned.
func (e *Experiment) SavePassFilter(ids []int) error {
	var result *multierror.Error
	for _, id := range ids {
		if id < 0 || id >= len(e.Jobs) {
			result = multierror.Append(result, &expctlerrors.ErrInvalidId{
				Id:      id,
				Message: fmt.Sprintf("experiment %s has %d jobs", e.Name, len(e.Jobs)),
			})
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	if ids == nil {
		ids = []int{}
	}
	data, err := json.Marshal(passFilterDocument{Jobs: ids})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.MkdirAll(e.BaseDir(), 0o755); err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(e.path(PassFilterFile), data, 0o644); err != nil {
		return errors.Wrapf(err, "error saving pass filter of experiment %s", e.Name)
	}
	return nil
}

// GetFilteredIds returns the ids saved by SavePassFilter, as they were saved.
func (e *Experiment) GetFilteredIds() ([]int, error) {
	data, err := os.ReadFile(e.path(PassFilterFile))
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&expctlerrors.ErrNotFound{
			Type:    "pass filter",
			Value:   e.path(PassFilterFile),
			Message: "pass_filter not generated yet; save a pass filter first",
		})
	} else if err != nil {
		return nil, errors.Wrapf(err, "error reading pass filter of experiment %s", e.Name)
	}
	doc := passFilterDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", e.path(PassFilterFile))
	}
	if doc.Jobs == nil {
		return []int{}, nil
	}
	return doc.Jobs, nil
}
