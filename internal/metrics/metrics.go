// Package metrics writes the outcome of a job run in the Prometheus text format, to be
// picked up by a node exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const prefix = "expctl_job_"

var jobLabels = []string{"experiment", "job_id", "task_index"}

type JobMetrics struct {
	experiment string
	jobId      int
	taskIndex  int
	registry   *prometheus.Registry

	startTime *prometheus.GaugeVec
	endTime   *prometheus.GaugeVec
	duration  *prometheus.GaugeVec
	success   *prometheus.GaugeVec
}

func NewJobMetrics(experiment string, jobId int, taskIndex int) *JobMetrics {
	m := &JobMetrics{
		experiment: experiment,
		jobId:      jobId,
		taskIndex:  taskIndex,
		registry:   prometheus.NewRegistry(),
		startTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "start_time_seconds",
				Help: "Unix time the job started",
			},
			jobLabels,
		),
		endTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "end_time_seconds",
				Help: "Unix time the job finished",
			},
			jobLabels,
		),
		duration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "duration_seconds",
				Help: "Wall time taken by the job",
			},
			jobLabels,
		),
		success: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "success",
				Help: "1 if the job succeeded, 0 otherwise",
			},
			jobLabels,
		),
	}
	m.registry.MustRegister(m.startTime, m.endTime, m.duration, m.success)
	return m
}

func (m *JobMetrics) labels() prometheus.Labels {
	return prometheus.Labels{
		"experiment": m.experiment,
		"job_id":     strconv.Itoa(m.jobId),
		"task_index": strconv.Itoa(m.taskIndex),
	}
}

// Record sets the metrics of a run that went from start to end. A non-nil err marks it failed.
func (m *JobMetrics) Record(start time.Time, end time.Time, err error) {
	labels := m.labels()
	m.startTime.With(labels).Set(float64(start.UnixNano()) / 1e9)
	m.endTime.With(labels).Set(float64(end.UnixNano()) / 1e9)
	m.duration.With(labels).Set(end.Sub(start).Seconds())
	if err != nil {
		m.success.With(labels).Set(0)
	} else {
		m.success.With(labels).Set(1)
	}
}

// Gatherer exposes the registry, mostly for tests.
func (m *JobMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Filename is the file WriteToDir writes.
func (m *JobMetrics) Filename() string {
	return fmt.Sprintf("expctl_%s_%d.prom", m.experiment, m.jobId)
}

// WriteToDir writes the metrics to dir/Filename(), atomically replacing previous runs of
// the same job.
func (m *JobMetrics) WriteToDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithStack(err)
	}
	path := filepath.Join(dir, m.Filename())
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "error writing metrics to %s", path)
	}
	return nil
}
