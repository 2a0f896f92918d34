package logging

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandLineFormatter(t *testing.T) {
	out, err := (&CommandLineFormatter{}).Format(&logrus.Entry{
		Message: "Experiment saved in /tmp/exp",
		Data:    logrus.Fields{"ignored": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "Experiment saved in /tmp/exp\n", string(out))
}

func TestDebugCommandLineFormatter(t *testing.T) {
	out, err := (&DebugCommandLineFormatter{}).Format(&logrus.Entry{
		Level:   logrus.DebugLevel,
		Message: "dispatching",
		Data:    logrus.Fields{"jobId": 3, "experiment": "exp", Stacktrace: "hidden"},
	})
	require.NoError(t, err)
	assert.Equal(t, "debug dispatching experiment=exp jobId=3\n", string(out))
}

func TestWithStacktrace(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := logrus.New()
	logger.Out = buf
	logger.Formatter = &logrus.JSONFormatter{}

	err := errors.Wrap(errors.New("inner"), "outer")
	WithStacktrace(logrus.NewEntry(logger), err).Error("failed")

	assert.Contains(t, buf.String(), `"error":"outer: inner"`)
	assert.Contains(t, buf.String(), `"stacktrace"`)
}

func TestExtractStack_NoStack(t *testing.T) {
	assert.Nil(t, ExtractStack(assert.AnError))
}
