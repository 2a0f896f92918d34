package experiment

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

func TestSavePassFilter_RoundTrip(t *testing.T) {
	tests := map[string][]int{
		"filtered":       {0, 1, 2},
		"unordered":      {4, 0, 2},
		"with duplicate": {1, 1},
		"empty":          {},
	}
	for name, ids := range tests {
		t.Run(name, func(t *testing.T) {
			e := newTestExperiment(t)
			require.NoError(t, e.SavePassFilter(ids))

			got, err := e.GetFilteredIds()
			require.NoError(t, err)
			assert.Equal(t, ids, got)
		})
	}
}

func TestSavePassFilter_Format(t *testing.T) {
	e := newTestExperiment(t)
	require.NoError(t, e.SavePassFilter(e.GetIds(isTD3)))

	data, err := os.ReadFile(filepath.Join(e.BaseDir(), PassFilterFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jobs":[0,1,2]}`, string(data))
}

func TestSavePassFilter_RejectsInvalidIds(t *testing.T) {
	e := newTestExperiment(t)
	require.NoError(t, e.SavePassFilter([]int{0}))

	err := e.SavePassFilter([]int{1, 6, -1})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	var invalid *expctlerrors.ErrInvalidId
	assert.True(t, errors.As(merr.Errors[0], &invalid))
	assert.Equal(t, 6, invalid.Id)

	// the previous pass filter is untouched
	got, err := e.GetFilteredIds()
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)
}

func TestGetFilteredIds_NotGenerated(t *testing.T) {
	e := newTestExperiment(t)
	_, err := e.GetFilteredIds()
	var notFound *expctlerrors.ErrNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, err.Error(), "pass_filter not generated yet")
}

func TestGetFilteredIds_ReturnsStaleIds(t *testing.T) {
	e := newTestExperiment(t)
	require.NoError(t, e.Save())
	require.NoError(t, e.SavePassFilter([]int{4, 5}))

	// an experiment saved over the old one with fewer jobs keeps the old pass filter
	smaller, err := New(e.Variables, experimentName, e.Root(), nil)
	require.NoError(t, err)
	_, err = smaller.AddJob(map[string]any{"algorithm": "TD3", "seed": 1}, nil)
	require.NoError(t, err)
	require.NoError(t, smaller.Save())

	got, err := smaller.GetFilteredIds()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, got)
}
