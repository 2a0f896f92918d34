package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

const declaration = `
name: td3_hopper
variables:
  - name: algorithm
    values: [TD3, DDPG]
  - name: seed
    values: [1, 2, 3]
configuration:
  env: Hopper-v4
  seed: 0
  actor:
    layers: [256, 256]
slurm:
  pre_script: ["module load python"]
  post_script: []
  n_gpus: 1
  n_cpus: 2
  memory: 4G
  time: "02:00:00"
  job_runner: expctl run -- python train.py
`

func TestParseDeclaration(t *testing.T) {
	d, err := ParseDeclaration([]byte(declaration))
	require.NoError(t, err)
	assert.Equal(t, "td3_hopper", d.Name)
	require.Len(t, d.Variables, 2)
	assert.Equal(t, Axis{Name: "seed", Values: []any{1.0, 2.0, 3.0}}, d.Variables[1])

	resources, err := d.Resources()
	require.NoError(t, err)
	require.NotNil(t, resources)
	assert.Equal(t, "expctl run -- python train.py", resources.JobRunner)
	assert.Equal(t, 2, resources.CPUs)
}

func TestParseDeclaration_Invalid(t *testing.T) {
	tests := map[string]struct {
		content        string
		expectedErrors int
	}{
		"no name": {
			content:        "variables: [{name: seed, values: [1]}]",
			expectedErrors: 1,
		},
		"duplicate and empty axes": {
			content: `
name: x
variables:
  - {name: seed, values: [1]}
  - {name: seed, values: []}
  - {name: "", values: [1]}
`,
			expectedErrors: 3,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDeclaration([]byte(tc.content))
			var merr *multierror.Error
			require.True(t, errors.As(err, &merr))
			assert.Len(t, merr.Errors, tc.expectedErrors)
		})
	}
}

func TestParseDeclaration_UnknownField(t *testing.T) {
	_, err := ParseDeclaration([]byte("name: x\nvariabls: []\n"))
	assert.Error(t, err)
}

func TestPoints(t *testing.T) {
	d := &Declaration{
		Name: "x",
		Variables: []Axis{
			{Name: "algorithm", Values: []any{"TD3", "DDPG"}},
			{Name: "seed", Values: []any{1, 2}},
		},
	}
	assert.Equal(t, []map[string]any{
		{"algorithm": "TD3", "seed": 1},
		{"algorithm": "TD3", "seed": 2},
		{"algorithm": "DDPG", "seed": 1},
		{"algorithm": "DDPG", "seed": 2},
	}, d.Points())
}

func TestPoints_NoAxes(t *testing.T) {
	d := &Declaration{Name: "x"}
	assert.Equal(t, []map[string]any{{}}, d.Points())
}

func TestBuild(t *testing.T) {
	d, err := ParseDeclaration([]byte(declaration))
	require.NoError(t, err)

	e, err := d.Build(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "td3_hopper", e.Name)
	assert.Equal(t, []string{"algorithm", "seed"}, e.Variables)
	require.Len(t, e.Jobs, 6)

	job := e.Jobs[4]
	assert.Equal(t, map[string]any{"algorithm": "DDPG", "seed": 2.0}, job.Variables)
	assert.Equal(t, map[string]any{
		"algorithm": "DDPG",
		"seed":      2.0,
		"env":       "Hopper-v4",
		"actor":     map[string]any{"layers": []any{256.0, 256.0}},
	}, job.Configuration)
	// the base configuration is left alone
	assert.Equal(t, 0.0, d.Configuration["seed"])

	resources, ok := e.Resources()
	require.True(t, ok)
	assert.Equal(t, "4G", resources.Memory)
}

func TestBuild_DuplicateValues(t *testing.T) {
	d := &Declaration{
		Name:      "x",
		Variables: []Axis{{Name: "seed", Values: []any{1, 1.0}}},
	}
	_, err := d.Build(t.TempDir())
	var duplicate *expctlerrors.ErrDuplicateJob
	assert.True(t, errors.As(err, &duplicate))
}

func TestBuild_InvalidSlurmBlock(t *testing.T) {
	d, err := ParseDeclaration([]byte("name: x\nslurm:\n  n_gpus: 1\n"))
	require.NoError(t, err)
	_, err = d.Build(t.TempDir())
	assert.Error(t, err)
}

func TestReadDeclaration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(declaration), 0o644))
	d, err := ReadDeclaration(path)
	require.NoError(t, err)
	assert.Len(t, d.Points(), 6)

	_, err = ReadDeclaration(filepath.Join(t.TempDir(), "missing.yaml"))
	var notFound *expctlerrors.ErrNotFound
	assert.True(t, errors.As(err, &notFound))
}
