package expctl

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	"github.com/armadaproject/expctl/internal/predicate"
)

// FilterOptions select the jobs of the pass filter. Exactly one of Expression, All, Ids and
// Random must be set.
type FilterOptions struct {
	Expression string
	All        bool
	Ids        []int
	// Number of jobs to pick at random.
	Random int
	// Seed of the random pick. Nil means a seed is drawn from App.Random.
	Seed *int64
}

func (o FilterOptions) validate() error {
	modes := 0
	for _, set := range []bool{o.Expression != "", o.All, o.Ids != nil, o.Random != 0} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "filter",
			Value:   modes,
			Message: "exactly one of an expression, --all, --ids or --random must be given",
		})
	}
	return nil
}

// Filter selects jobs and saves them as the pass filter of the experiment.
func (a *App) Filter(opts FilterOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	e, err := a.load()
	if err != nil {
		return err
	}

	var ids []int
	switch {
	case opts.Expression != "":
		expression, err := predicate.Parse(opts.Expression)
		if err != nil {
			return err
		}
		if ids, err = expression.Ids(e); err != nil {
			return err
		}
	case opts.All:
		ids = e.GetAllIds()
	case opts.Ids != nil:
		ids = opts.Ids
	default:
		var seed int64
		if opts.Seed != nil {
			seed = *opts.Seed
		} else if seed, err = a.seed(); err != nil {
			return err
		}
		log.Debugf("Picking %d random jobs with seed %d", opts.Random, seed)
		if ids, err = e.GetRandomIds(opts.Random, rand.New(rand.NewSource(seed))); err != nil {
			return err
		}
	}

	if err := e.SavePassFilter(ids); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Saved pass filter of experiment %s with %d of %d jobs: %v\n", e.Name, len(ids), len(e.Jobs), ids)
	return nil
}
