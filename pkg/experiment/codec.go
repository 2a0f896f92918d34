package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

// Saver writes data to path in some format.
type Saver func(path string, data any) error

// Loader reads back what the matching Saver wrote.
type Loader func(path string) (any, error)

// JSONSaver writes data as JSON.
func JSONSaver(path string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0o644))
}

// JSONLoader reads a JSON document into plain maps, slices and float64s.
func JSONLoader(path string) (any, error) {
	var data any
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// JSONLoaderInto returns a Loader that decodes into target, which it then returns.
func JSONLoaderInto(target any) Loader {
	return func(path string) (any, error) {
		if err := readJSON(path, target); err != nil {
			return nil, err
		}
		return target, nil
	}
}

func readJSON(path string, target any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(json.Unmarshal(b, target))
}

// YAMLSaver writes data as YAML. Struct fields are named after their json tags.
func YAMLSaver(path string, data any) error {
	b, err := yaml.Marshal(data)
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, b, 0o644))
}

// YAMLLoader reads a YAML document the way JSONLoader reads JSON.
func YAMLLoader(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var data any
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// RawSaver writes data, a []byte or string, as is.
func RawSaver(path string, data any) error {
	var b []byte
	switch t := data.(type) {
	case []byte:
		b = t
	case string:
		b = []byte(t)
	default:
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "data",
			Value:   fmt.Sprintf("%T", data),
			Message: "raw results must be bytes or a string",
		})
	}
	return errors.WithStack(os.WriteFile(path, b, 0o644))
}

// RawLoader reads a file as []byte.
func RawLoader(path string) (any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}
