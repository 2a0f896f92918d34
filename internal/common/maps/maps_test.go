package maps

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	tests := map[string]struct {
		m        map[string]int
		expected []string
	}{
		"nil":      {m: nil, expected: []string{}},
		"one":      {m: map[string]int{"a": 1}, expected: []string{"a"}},
		"unsorted": {m: map[string]int{"n_gpus": 1, "job_runner": 2, "time": 3}, expected: []string{"job_runner", "n_gpus", "time"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SortedKeys(tc.m))
		})
	}
}
