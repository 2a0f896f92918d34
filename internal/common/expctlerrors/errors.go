// Package expctlerrors contains the generic errors returned by the experiment store, the
// filter registry, the execution gate and the result store.
//
// Callers should match on these types with errors.As, since most call sites wrap them
// with a stack trace or extra context using github.com/pkg/errors.
//
// If multiple errors occur in some function (e.g., if several ids of a pass filter are
// invalid), that function should return an error of type multierror.Error from package
// github.com/hashicorp/go-multierror that encapsulates those individual errors.
package expctlerrors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// ErrAlreadyExists is a generic error to be returned whenever some resource already exists.
// Type and Message are optional and are omitted from the error message if not provided.
type ErrAlreadyExists struct {
	Type    string // Resource type, e.g., "result" or "experiment"
	Value   string // Resource name, e.g., "/data/exp/3_results.json"
	Message string // An optional message to include in the error message
}

func (err *ErrAlreadyExists) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q already exists", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q already exists", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrNotFound is a generic error to be returned whenever some resource isn't found.
// Type and Message are optional and are omitted from the error message if not provided.
//
// See ErrAlreadyExists for more info.
type ErrNotFound struct {
	Type    string
	Value   string
	Message string
}

func (err *ErrNotFound) Error() (s string) {
	if err.Type != "" {
		s = fmt.Sprintf("resource %q of type %q does not exist", err.Value, err.Type)
	} else {
		s = fmt.Sprintf("resource %q does not exist", err.Value)
	}
	if err.Message != "" {
		return s + fmt.Sprintf("; %s", err.Message)
	} else {
		return s
	}
}

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the field referred to, e.g., "n_tasks"
	Value   interface{} // The invalid value that was provided
	Message string      // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for field %q", err.Value, err.Name)
	} else {
		return fmt.Sprintf("value %v is invalid for field %q; %s", err.Value, err.Name, err.Message)
	}
}

// ErrDuplicateJob is returned when a job is added whose variables are equal to those of a job
// already in the experiment.
type ErrDuplicateJob struct {
	Variables  map[string]any
	ExistingId int
}

func (err *ErrDuplicateJob) Error() string {
	return fmt.Sprintf("job with variables %v already exists with id %d", err.Variables, err.ExistingId)
}

// ErrMissingPath is returned when an experiment is created without a root directory.
type ErrMissingPath struct {
	Experiment string
}

func (err *ErrMissingPath) Error() string {
	return fmt.Sprintf("no root path provided for experiment %q; please provide a path to save the experiment in", err.Experiment)
}

// ErrInvalidId is returned when a job id (or array task index) is not part of the pass filter,
// or doesn't index a job of the experiment.
type ErrInvalidId struct {
	Id      int
	Message string
}

func (err *ErrInvalidId) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("job id %d is not in the list of allowed ids", err.Id)
	}
	return fmt.Sprintf("job id %d is invalid; %s", err.Id, err.Message)
}

// ErrMissingResourceSpec is returned when a batch script is requested for an experiment
// that has no SLURM resource specification.
type ErrMissingResourceSpec struct {
	Experiment string
}

func (err *ErrMissingResourceSpec) Error() string {
	return fmt.Sprintf("experiment %q has no slurm configuration", err.Experiment)
}

// ErrKeyNotFound is returned by a strict configuration accessor for a missing key.
type ErrKeyNotFound struct {
	Key string
}

func (err *ErrKeyNotFound) Error() string {
	return fmt.Sprintf("key %q not found in configuration", err.Key)
}

// Exit codes returned by the expctl binary, one per error kind.
const (
	ExitOK = iota
	ExitUnknown
	ExitInvalidArgument
	ExitNotFound
	ExitAlreadyExists
	ExitInvalidId
	ExitDuplicateJob
	ExitMissingResourceSpec
)

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
// For a multierror.Error the first wrapped error decides the code.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitOK
	}

	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		return ExitCodeFromError(merr.Errors[0])
	}

	// Using {} scopes just to re-use the "e" variable name for each case.
	{
		var e *ErrAlreadyExists
		if errors.As(err, &e) {
			return ExitAlreadyExists
		}
	}
	{
		var e *ErrNotFound
		if errors.As(err, &e) {
			return ExitNotFound
		}
	}
	{
		var e *ErrInvalidId
		if errors.As(err, &e) {
			return ExitInvalidId
		}
	}
	{
		var e *ErrDuplicateJob
		if errors.As(err, &e) {
			return ExitDuplicateJob
		}
	}
	{
		var e *ErrMissingResourceSpec
		if errors.As(err, &e) {
			return ExitMissingResourceSpec
		}
	}
	{
		var e *ErrInvalidArgument
		if errors.As(err, &e) {
			return ExitInvalidArgument
		}
	}
	{
		var e *ErrMissingPath
		if errors.As(err, &e) {
			return ExitInvalidArgument
		}
	}
	{
		var e *ErrKeyNotFound
		if errors.As(err, &e) {
			return ExitInvalidArgument
		}
	}
	return ExitUnknown
}
