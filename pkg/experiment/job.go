package experiment

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// Job is one unit of work: the variables that set it apart from the other jobs of the
// experiment, and the full configuration needed to run it.
type Job struct {
	Variables     map[string]any `json:"variables"`
	Configuration map[string]any `json:"run_config"`
}

// Predicate selects jobs by their variables.
type Predicate func(variables map[string]any) bool

// sameVariables reports whether two (normalised) variable assignments are equal.
func sameVariables(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// normalise round-trips m through JSON, so that values compare the same before and after the
// experiment is saved and loaded again (e.g. int 1 and float64 1 both become float64 1).
func normalise(m map[string]any) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "value is not JSON serialisable")
	}
	rv := map[string]any{}
	if err := json.Unmarshal(data, &rv); err != nil {
		return nil, errors.WithStack(err)
	}
	return rv, nil
}
