// Package predicate compiles filter expressions over the variables of a job.
//
// Expressions use the HCL expression syntax. Every variable of the experiment is in scope
// under its own name, and the whole variable mapping is available as job, so
//
//	algorithm == "TD3" && seed <= 2
//	contains(["TD3", "SAC"], job["algorithm"])
//
// are both valid filters. A variable a job doesn't define evaluates to null.
package predicate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	commonslices "github.com/armadaproject/expctl/internal/common/slices"
	"github.com/armadaproject/expctl/pkg/experiment"
)

// JobVariable names the object holding all the variables of the job being filtered.
const JobVariable = "job"

var functions = map[string]function.Function{
	"abs":      stdlib.AbsoluteFunc,
	"ceil":     stdlib.CeilFunc,
	"contains": stdlib.ContainsFunc,
	"floor":    stdlib.FloorFunc,
	"format":   stdlib.FormatFunc,
	"length":   stdlib.LengthFunc,
	"lower":    stdlib.LowerFunc,
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"strlen":   stdlib.StrlenFunc,
	"upper":    stdlib.UpperFunc,
}

// Expression is a parsed filter expression.
type Expression struct {
	source string
	expr   hcl.Expression
}

// Parse parses source. Syntax errors are reported as ErrInvalidArgument.
func Parse(source string) (*Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), "filter", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "filter",
			Value:   source,
			Message: diags.Error(),
		})
	}
	return &Expression{source: source, expr: expr}, nil
}

func (x *Expression) String() string {
	return x.source
}

// Variables returns the names the expression refers to, sorted and without duplicates.
func (x *Expression) Variables() []string {
	names := commonslices.Unique(commonslices.Map(x.expr.Variables(), func(t hcl.Traversal) string {
		return t.RootName()
	}))
	sort.Strings(names)
	return names
}

// Eval evaluates the expression against the variables of one job. The expression must
// evaluate to a known, non-null bool.
func (x *Expression) Eval(variables map[string]any) (bool, error) {
	ctx, err := evalContext(variables, x.Variables())
	if err != nil {
		return false, err
	}
	value, diags := x.expr.Value(ctx)
	if diags.HasErrors() {
		return false, errors.Errorf("error evaluating %q: %s", x.source, diags.Error())
	}
	if value.IsNull() || !value.IsKnown() || !value.Type().Equals(cty.Bool) {
		return false, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "filter",
			Value:   x.source,
			Message: fmt.Sprintf("evaluates to %s, not a bool", value.GoString()),
		})
	}
	return value.True(), nil
}

func evalContext(variables map[string]any, referenced []string) (*hcl.EvalContext, error) {
	job, err := ToCtyValue(variables)
	if err != nil {
		return nil, err
	}
	vars := map[string]cty.Value{JobVariable: job}
	for _, name := range referenced {
		if name == JobVariable {
			continue
		}
		v, ok := variables[name]
		if !ok {
			vars[name] = cty.NullVal(cty.DynamicPseudoType)
			continue
		}
		if vars[name], err = ToCtyValue(v); err != nil {
			return nil, errors.WithMessagef(err, "variable %s", name)
		}
	}
	return &hcl.EvalContext{Variables: vars, Functions: functions}, nil
}

// Ids returns the ids of the jobs of e for which the expression is true, in job order.
// Names the expression refers to must be variables of e.
func (x *Expression) Ids(e *experiment.Experiment) ([]int, error) {
	known := append([]string{JobVariable}, e.Variables...)
	if unknown := commonslices.Subtract(x.Variables(), known); len(unknown) > 0 {
		return nil, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "filter",
			Value:   x.source,
			Message: fmt.Sprintf("%s is not a variable of experiment %s", strings.Join(unknown, ", "), e.Name),
		})
	}

	var evalErr error
	ids := e.GetIds(func(variables map[string]any) bool {
		if evalErr != nil {
			return false
		}
		ok, err := x.Eval(variables)
		if err != nil {
			evalErr = err
			return false
		}
		return ok
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return ids, nil
}
