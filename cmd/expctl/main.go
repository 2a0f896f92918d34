package main

import (
	"os"
	"os/exec"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/expctl/cmd/expctl/cmd"
	"github.com/armadaproject/expctl/internal/common"
	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/common/logging"
)

// Config is handled by cmd/params.go
func main() {
	common.ConfigureCommandLineLogging()
	err := cmd.RootCmd().Execute()
	if err == nil {
		return
	}
	logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error("expctl failed")

	// A failing job command exits with the command's status.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		os.Exit(exitErr.ExitCode())
	}
	os.Exit(expctlerrors.ExitCodeFromError(err))
}
