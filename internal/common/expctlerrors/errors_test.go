package expctlerrors

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestExitCodeFromError(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"ErrAlreadyExists":                 {&ErrAlreadyExists{}, ExitAlreadyExists},
		"ErrNotFound":                      {&ErrNotFound{}, ExitNotFound},
		"ErrInvalidArgument":               {&ErrInvalidArgument{}, ExitInvalidArgument},
		"ErrInvalidId":                     {&ErrInvalidId{Id: 3}, ExitInvalidId},
		"ErrDuplicateJob":                  {&ErrDuplicateJob{}, ExitDuplicateJob},
		"ErrMissingResourceSpec":           {&ErrMissingResourceSpec{}, ExitMissingResourceSpec},
		"ErrMissingPath":                   {&ErrMissingPath{}, ExitInvalidArgument},
		"ErrKeyNotFound":                   {&ErrKeyNotFound{Key: "lr"}, ExitInvalidArgument},
		"pkg.Error => ErrAlreadyExists":    {errors.WithMessage(&ErrAlreadyExists{}, "foo"), ExitAlreadyExists},
		"pkg.Error => ErrNotFound":         {errors.Wrap(&ErrNotFound{}, "foo"), ExitNotFound},
		"pkg.Error => ErrInvalidId":        {errors.WithStack(&ErrInvalidId{}), ExitInvalidId},
		"multierror => first error counts": {multierror.Append(nil, &ErrInvalidId{Id: 9}, &ErrNotFound{}), ExitInvalidId},
		"pkg.Error":                        {errors.New("foo"), ExitUnknown},
		"nil":                              {nil, ExitOK},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCodeFromError(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"already exists with type": {
			err:  &ErrAlreadyExists{Type: "result", Value: "0_r.json", Message: "use override"},
			want: `resource "0_r.json" of type "result" already exists; use override`,
		},
		"not found without type": {
			err:  &ErrNotFound{Value: "pass_filter.json"},
			want: `resource "pass_filter.json" does not exist`,
		},
		"invalid id default message": {
			err:  &ErrInvalidId{Id: 4},
			want: "job id 4 is not in the list of allowed ids",
		},
		"invalid id custom message": {
			err:  &ErrInvalidId{Id: 4, Message: "experiment has 2 jobs"},
			want: "job id 4 is invalid; experiment has 2 jobs",
		},
		"missing resource spec": {
			err:  &ErrMissingResourceSpec{Experiment: "exp"},
			want: `experiment "exp" has no slurm configuration`,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}
