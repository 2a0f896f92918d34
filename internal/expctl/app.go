package expctl

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/expctl/build"
	"github.com/armadaproject/expctl/pkg/experiment"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the applications's output.
	Out io.Writer
	// Source of randomness, used to seed random job selection when no seed is given.
	// Tests can use a deterministic source.
	Random io.Reader
}

// Params struct holds all user-customizable parameters.
// Using a single struct for all CLI commands ensures that all flags are distinct
// and that they can be provided either dynamically on a command line, or
// statically in a config file that's reused between command runs.
type Params struct {
	// Directory holding the experiments.
	ExperimentPath string `mapstructure:"experimentPath"`
	// Name of the experiment to operate on; its files live in ExperimentPath/ExperimentName.
	ExperimentName string `mapstructure:"experimentName"`
	Verbose        bool   `mapstructure:"verbose"`
}

// New instantiates an App with default parameters, including standard output
// and cryptographically secure random source.
func New() *App {
	return &App{
		Params: &Params{},
		Out:    os.Stdout,
		Random: rand.Reader,
	}
}

func (a *App) validateParams() error {
	if a.Params.ExperimentPath == "" {
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "experiment-path",
			Value:   a.Params.ExperimentPath,
			Message: "not provided",
		})
	}
	if a.Params.ExperimentName == "" {
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "experiment-name",
			Value:   a.Params.ExperimentName,
			Message: "not provided",
		})
	}
	return nil
}

// load reads the experiment selected by the params.
func (a *App) load() (*experiment.Experiment, error) {
	if err := a.validateParams(); err != nil {
		return nil, err
	}
	return experiment.Load(a.Params.ExperimentPath, a.Params.ExperimentName)
}

func (a *App) seed() (int64, error) {
	var seed int64
	if err := binary.Read(a.Random, binary.LittleEndian, &seed); err != nil {
		return 0, errors.Wrap(err, "error reading random seed")
	}
	return seed, nil
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}
