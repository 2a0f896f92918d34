package predicate

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/pkg/experiment"
)

func TestEval(t *testing.T) {
	variables := map[string]any{
		"algorithm": "TD3",
		"seed":      2.0,
		"nn":        []any{64.0, 64.0},
		"tags":      map[string]any{"env": "hopper"},
	}
	tests := map[string]struct {
		source   string
		expected bool
	}{
		"string equality":    {source: `algorithm == "TD3"`, expected: true},
		"string inequality":  {source: `algorithm != "TD3"`, expected: false},
		"number comparison":  {source: `seed <= 2`, expected: true},
		"integer equality":   {source: `seed == 2`, expected: true},
		"conjunction":        {source: `algorithm == "TD3" && seed > 2`, expected: false},
		"disjunction":        {source: `algorithm == "DDPG" || seed == 2`, expected: true},
		"negation":           {source: `!(algorithm == "DDPG")`, expected: true},
		"list index":         {source: `nn[1] == 64`, expected: true},
		"list length":        {source: `length(nn) == 2`, expected: true},
		"object attribute":   {source: `tags.env == "hopper"`, expected: true},
		"job object":         {source: `job["algorithm"] == "TD3"`, expected: true},
		"contains":           {source: `contains(["TD3", "SAC"], algorithm)`, expected: true},
		"function":           {source: `lower(algorithm) == "td3"`, expected: true},
		"literal":            {source: `true`, expected: true},
		"arithmetic":         {source: `seed * 2 - 1 == 3`, expected: true},
		"conditional":        {source: `seed > 1 ? algorithm == "TD3" : false`, expected: true},
		"string template":    {source: `"${algorithm}-${seed}" == "TD3-2"`, expected: true},
		"unmatched constant": {source: `false`, expected: false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			x, err := Parse(tc.source)
			require.NoError(t, err)
			result, err := x.Eval(variables)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse(`algorithm == `)
	var invalid *expctlerrors.ErrInvalidArgument
	assert.True(t, errors.As(err, &invalid))
}

func TestEval_NotABool(t *testing.T) {
	tests := map[string]string{
		"string": `algorithm`,
		"number": `seed + 1`,
		"null":   `null`,
	}
	for name, source := range tests {
		t.Run(name, func(t *testing.T) {
			x, err := Parse(source)
			require.NoError(t, err)
			_, err = x.Eval(map[string]any{"algorithm": "TD3", "seed": 1.0})
			assert.Error(t, err)
		})
	}
}

func TestEval_TypeError(t *testing.T) {
	x, err := Parse(`algorithm > 3`)
	require.NoError(t, err)
	_, err = x.Eval(map[string]any{"algorithm": "TD3"})
	assert.Error(t, err)
}

func TestVariables(t *testing.T) {
	x, err := Parse(`seed > 1 && algorithm == "TD3" && upper(algorithm) != job["x"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"algorithm", "job", "seed"}, x.Variables())
}

func newExperiment(t *testing.T) *experiment.Experiment {
	t.Helper()
	e, err := experiment.New([]string{"algorithm", "seed"}, "predicate", t.TempDir(), nil)
	require.NoError(t, err)
	for _, algorithm := range []string{"TD3", "DDPG"} {
		for _, seed := range []int{1, 2, 3} {
			_, err := e.AddJob(map[string]any{"algorithm": algorithm, "seed": seed}, nil)
			require.NoError(t, err)
		}
	}
	return e
}

func TestIds(t *testing.T) {
	e := newExperiment(t)
	tests := map[string]struct {
		source   string
		expected []int
	}{
		"by algorithm":   {source: `algorithm == "TD3"`, expected: []int{0, 1, 2}},
		"by seed":        {source: `seed == 1`, expected: []int{0, 3}},
		"none":           {source: `seed > 3`, expected: []int{}},
		"all":            {source: `true`, expected: []int{0, 1, 2, 3, 4, 5}},
		"combined":       {source: `algorithm == "DDPG" && seed >= 2`, expected: []int{4, 5}},
		"through object": {source: `job.seed == 3`, expected: []int{2, 5}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			x, err := Parse(tc.source)
			require.NoError(t, err)
			ids, err := x.Ids(e)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestIds_UnknownVariable(t *testing.T) {
	e := newExperiment(t)
	x, err := Parse(`algoritm == "TD3"`)
	require.NoError(t, err)
	_, err = x.Ids(e)
	var invalid *expctlerrors.ErrInvalidArgument
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "algoritm is not a variable")
}

func TestIds_EvaluationError(t *testing.T) {
	e := newExperiment(t)
	x, err := Parse(`seed`)
	require.NoError(t, err)
	_, err = x.Ids(e)
	assert.Error(t, err)
}

func TestToCtyValue_Empty(t *testing.T) {
	v, err := ToCtyValue([]any{})
	require.NoError(t, err)
	assert.Equal(t, 0, v.LengthInt())

	v, err = ToCtyValue(map[string]any{})
	require.NoError(t, err)
	assert.True(t, v.Type().IsObjectType())

	v, err = ToCtyValue([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, v.LengthInt())
}
