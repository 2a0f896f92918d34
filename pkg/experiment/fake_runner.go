package experiment

import (
	"fmt"
	"io"
)

// FakeResultsFile is the result the fake runner stores.
const FakeResultsFile = "results.json"

// FakeRunner returns a Runner that prints the job to out and stores its configuration as
// its result. Useful to dry-run the dispatch of an experiment end to end.
func FakeRunner(out io.Writer) Runner {
	return func(data *ExperimentData) error {
		fmt.Fprintf(out, "%s\n", data)
		return data.SaveResults(FakeResultsFile, JSONSaver, data.Configuration, false)
	}
}
