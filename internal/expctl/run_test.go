package expctl

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/ledger"
	"github.com/armadaproject/expctl/pkg/experiment"
)

func TestRun_Fake(t *testing.T) {
	app, buf := newTestApp(t)
	require.NoError(t, app.Filter(FilterOptions{Expression: `algorithm == "DDPG"`}))
	buf.Reset()

	ctx := context.Background()
	require.NoError(t, app.Run(ctx, RunOptions{JobId: 1, Fake: true}))
	assert.Contains(t, buf.String(), "id: 3")

	e := loadExperiment(t, app)
	result, err := e.GetResults(3, experiment.FakeResultsFile, experiment.JSONLoader)
	require.NoError(t, err)
	assert.Equal(t, e.Jobs[3].Configuration, result)

	l, err := ledger.Open(ctx, ledger.Path(e.BaseDir()))
	require.NoError(t, err)
	defer l.Close()
	runs, err := l.ForJob(ctx, 3)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ledger.Succeeded, runs[0].State)
	assert.Equal(t, 1, runs[0].TaskIndex)

	buf.Reset()
	require.NoError(t, app.Runs(ctx, nil))
	table := lines(buf.String())
	require.Len(t, table, 2)
	assert.Equal(t, []string{runs[0].RunId, "3", "1"}, table[1][:3])
	assert.Contains(t, table[1], "succeeded")
}

func TestRun_ById(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.Filter(FilterOptions{Ids: []int{2}}))

	require.NoError(t, app.Run(context.Background(), RunOptions{JobId: 2, ById: true, Fake: true, NoLedger: true}))
	e := loadExperiment(t, app)
	assert.FileExists(t, e.ResultPath(2, experiment.FakeResultsFile))
	assert.NoFileExists(t, ledger.Path(e.BaseDir()))

	// job 0 is not in the pass filter
	err := app.Run(context.Background(), RunOptions{JobId: 0, ById: true, Fake: true})
	var invalid *expctlerrors.ErrInvalidId
	assert.True(t, errors.As(err, &invalid))
	assert.NoFileExists(t, e.ResultPath(0, experiment.FakeResultsFile))
}

func TestRun_TaskOutOfRange(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.Filter(FilterOptions{Ids: []int{2}}))

	err := app.Run(context.Background(), RunOptions{JobId: 1, Fake: true})
	var invalid *expctlerrors.ErrInvalidId
	assert.True(t, errors.As(err, &invalid))
}

func TestRun_NoCommand(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.Run(context.Background(), RunOptions{JobId: 0})
	var invalid *expctlerrors.ErrInvalidArgument
	assert.True(t, errors.As(err, &invalid))
}

func TestRun_Command(t *testing.T) {
	app, buf := newTestApp(t)
	require.NoError(t, app.Filter(FilterOptions{All: true}))
	buf.Reset()
	metricsDir := t.TempDir()

	script := `cat > "$EXPCTL_BASE_DIR/${EXPCTL_JOB_ID}_input.json" && echo "ran $EXPCTL_EXPERIMENT_NAME"`
	require.NoError(t, app.Run(context.Background(), RunOptions{
		JobId:      2,
		Command:    []string{"sh", "-c", script},
		MetricsDir: metricsDir,
	}))
	assert.Equal(t, "ran sweep\n", buf.String())

	e := loadExperiment(t, app)
	data, err := os.ReadFile(e.ResultPath(2, "input.json"))
	require.NoError(t, err)
	var input map[string]any
	require.NoError(t, json.Unmarshal(data, &input))
	assert.Equal(t, 2.0, input["id"])
	assert.Equal(t, map[string]any{"algorithm": "DDPG", "seed": 1.0}, input["variables"])
	assert.Equal(t, "Hopper-v4", input["configuration"].(map[string]any)["env"])

	prom, err := os.ReadFile(filepath.Join(metricsDir, "expctl_sweep_2.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `expctl_job_success{experiment="sweep",job_id="2",task_index="2"} 1`)
}

func TestRun_CommandFails(t *testing.T) {
	app, _ := newTestApp(t)
	require.NoError(t, app.Filter(FilterOptions{All: true}))
	ctx := context.Background()

	err := app.Run(ctx, RunOptions{JobId: 0, Command: []string{"sh", "-c", "exit 3"}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "exit status 3"))

	e := loadExperiment(t, app)
	l, err := ledger.Open(ctx, ledger.Path(e.BaseDir()))
	require.NoError(t, err)
	defer l.Close()
	runs, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ledger.Failed, runs[0].State)
	assert.Contains(t, runs[0].Error, "exit status 3")
}
