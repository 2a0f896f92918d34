package expctl

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

// Jobs lists the jobs of the experiment with their variables. When a pass filter has been
// saved, jobs allowed to run are marked.
func (a *App) Jobs() error {
	e, err := a.load()
	if err != nil {
		return err
	}
	filtered, err := e.GetFilteredIds()
	var notFound *expctlerrors.ErrNotFound
	hasFilter := true
	if errors.As(err, &notFound) {
		hasFilter = false
	} else if err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.Out, 1, 1, 2, ' ', 0)
	defer w.Flush()
	header := append([]string{"ID"}, upper(e.Variables)...)
	if hasFilter {
		header = append(header, "PASS")
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for id, job := range e.Jobs {
		row := []string{fmt.Sprint(id)}
		for _, name := range e.Variables {
			row = append(row, formatValue(job.Variables[name]))
		}
		if hasFilter {
			pass := ""
			if slices.Contains(filtered, id) {
				pass = "*"
			}
			row = append(row, pass)
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return nil
}

func upper(s []string) []string {
	rv := make([]string, len(s))
	for i, v := range s {
		rv[i] = strings.ToUpper(v)
	}
	return rv
}

// formatValue prints strings bare and everything else as JSON.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
