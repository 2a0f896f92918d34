package common

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/expctl/internal/common/logging"
)

// ConfigureCommandLineLogging sets up logrus for a command line tool: plain messages on stdout.
func ConfigureCommandLineLogging() {
	commandLineFormatter := new(logging.CommandLineFormatter)
	log.SetFormatter(commandLineFormatter)
	log.SetOutput(os.Stdout)
}

// ConfigureVerboseLogging switches to debug level output that includes log fields.
func ConfigureVerboseLogging() {
	log.SetFormatter(new(logging.DebugCommandLineFormatter))
	log.SetLevel(log.DebugLevel)
}
