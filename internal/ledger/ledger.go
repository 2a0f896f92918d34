// Package ledger records the runs of an experiment's jobs in a sqlite database kept next to
// the experiment, so workers on different nodes of a shared filesystem leave a trace of
// what ran where and how it ended.
package ledger

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// File is the name of the ledger database inside the experiment directory.
const File = "ledger.db"

type State string

const (
	Running   State = "running"
	Succeeded State = "succeeded"
	Failed    State = "failed"
)

// finishTimeout bounds recording the end of a run once the caller's context is cancelled.
const finishTimeout = 10 * time.Second

// NoTask is the task index of runs that weren't started by a job array task.
const NoTask = -1

// Run is one execution of a job.
type Run struct {
	RunId      string
	JobId      int
	TaskIndex  int
	Host       string
	State      State
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

type Ledger struct {
	db    *sql.DB
	lock  sync.Mutex
	clock func() time.Time
}

// Path returns the ledger of the experiment stored in baseDir.
func Path(baseDir string) string {
	return filepath.Join(baseDir, File)
}

// Open opens (creating if needed) the ledger at path and sets up its schema.
func Open(ctx context.Context, path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not make directory for ledger %s", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening ledger %s", path)
	}
	// Pragmas apply per connection.
	db.SetMaxOpenConns(1)
	l := &Ledger{db: db, clock: time.Now}
	if err := l.Setup(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Setup creates the runs table if it doesn't exist yet.
func (l *Ledger) Setup(ctx context.Context) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	statements := []string{
		"PRAGMA busy_timeout = 5000",
		// WAL needs shared memory on a single host; ledgers live on cluster filesystems.
		"PRAGMA journal_mode = DELETE",
		`CREATE TABLE IF NOT EXISTS runs (
			RunId TEXT,
			JobId INT,
			TaskIndex INT,
			Host TEXT,
			State TEXT,
			Error TEXT,
			StartedAt INT,
			FinishedAt INT,
			PRIMARY KEY(RunId))`,
		"CREATE INDEX IF NOT EXISTS idx_runs_job ON runs (JobId)",
	}
	for _, stmt := range statements {
		if err := l.exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "error setting up ledger")
		}
	}
	return nil
}

func (l *Ledger) Close() error {
	return errors.WithStack(l.db.Close())
}

// Start records that job jobId started running on this host.
func (l *Ledger) Start(ctx context.Context, jobId int, taskIndex int) (*Run, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	run := &Run{
		RunId:     uuid.New().String(),
		JobId:     jobId,
		TaskIndex: taskIndex,
		Host:      host,
		State:     Running,
		StartedAt: l.clock(),
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	err = l.exec(ctx,
		"INSERT INTO runs (RunId, JobId, TaskIndex, Host, State, Error, StartedAt, FinishedAt) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.RunId, run.JobId, run.TaskIndex, run.Host, string(run.State), "", run.StartedAt.UnixNano(), 0)
	if err != nil {
		return nil, errors.Wrapf(err, "error recording start of job %d", jobId)
	}
	return run, nil
}

// Finish records the outcome of run. A nil runErr marks it succeeded.
// It still writes when ctx is already cancelled, which is how runs killed by the scheduler end.
func (l *Ledger) Finish(ctx context.Context, run *Run, runErr error) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	run.FinishedAt = l.clock()
	run.State = Succeeded
	run.Error = ""
	if runErr != nil {
		run.State = Failed
		run.Error = runErr.Error()
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	err := l.exec(ctx,
		"UPDATE runs SET State = ?, Error = ?, FinishedAt = ? WHERE RunId = ?",
		string(run.State), run.Error, run.FinishedAt.UnixNano(), run.RunId)
	if err != nil {
		return errors.Wrapf(err, "error recording end of run %s", run.RunId)
	}
	return nil
}

// List returns every recorded run, oldest first.
func (l *Ledger) List(ctx context.Context) ([]*Run, error) {
	return l.query(ctx, "SELECT RunId, JobId, TaskIndex, Host, State, Error, StartedAt, FinishedAt FROM runs ORDER BY StartedAt, RunId")
}

// ForJob returns the runs of job jobId, oldest first.
func (l *Ledger) ForJob(ctx context.Context, jobId int) ([]*Run, error) {
	return l.query(ctx, "SELECT RunId, JobId, TaskIndex, Host, State, Error, StartedAt, FinishedAt FROM runs WHERE JobId = ? ORDER BY StartedAt, RunId", jobId)
}

func (l *Ledger) query(ctx context.Context, stmt string, args ...any) ([]*Run, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	rows, err := l.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying ledger")
	}
	defer rows.Close()

	runs := []*Run{}
	for rows.Next() {
		var state string
		var startedAt, finishedAt int64
		run := &Run{}
		if err := rows.Scan(&run.RunId, &run.JobId, &run.TaskIndex, &run.Host, &state, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, errors.WithStack(err)
		}
		run.State = State(state)
		run.StartedAt = time.Unix(0, startedAt)
		if finishedAt != 0 {
			run.FinishedAt = time.Unix(0, finishedAt)
		}
		runs = append(runs, run)
	}
	return runs, errors.WithStack(rows.Err())
}

// exec retries statements that fail because another process holds the database lock.
func (l *Ledger) exec(ctx context.Context, stmt string, args ...any) error {
	return retry.Do(
		func() error {
			_, err := l.db.ExecContext(ctx, stmt, args...)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(50*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Debugf("Ledger busy, retrying (attempt %d)", n+1)
		}),
	)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
