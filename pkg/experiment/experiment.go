package experiment

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/expctl/internal/common/expctlerrors"
	commonslices "github.com/armadaproject/expctl/internal/common/slices"
	"github.com/armadaproject/expctl/pkg/slurm"
)

// Names of the files an experiment keeps in its base directory.
const (
	ConfigFile      = "config.json"
	SlurmConfigFile = "slurm_config.json"
	PassFilterFile  = "pass_filter.json"
	SlurmScriptFile = "slurm_script.sh"
)

// Experiment is the job store of one named experiment.
type Experiment struct {
	// Names of the variables that set jobs apart, in declaration order.
	Variables []string
	Name      string
	// Jobs in id order. Only ever appended to.
	Jobs []Job

	root      string
	resources *slurm.ResourceSpec
}

type experimentDocument struct {
	Variables []string `json:"variables"`
	Jobs      []Job    `json:"jobs"`
}

// New creates an empty experiment stored under <root>/<name>.
// resources may be nil; it's only needed to generate batch scripts.
func New(variables []string, name string, root string, resources *slurm.ResourceSpec) (*Experiment, error) {
	if root == "" {
		return nil, errors.WithStack(&expctlerrors.ErrMissingPath{Experiment: name})
	}
	if name == "" {
		return nil, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "experiment_name",
			Value:   name,
			Message: "not provided",
		})
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "error resolving experiment root %s", root)
	}
	e := &Experiment{
		Variables: slices.Clone(variables),
		Name:      name,
		Jobs:      []Job{},
		root:      absRoot,
	}
	if resources != nil {
		e.SetResources(*resources)
	}
	return e, nil
}

// Root returns the directory the experiment directory lives in.
func (e *Experiment) Root() string {
	return e.root
}

// BaseDir returns <root>/<name>, where every file of the experiment is stored.
func (e *Experiment) BaseDir() string {
	return filepath.Join(e.root, e.Name)
}

func (e *Experiment) path(file string) string {
	return filepath.Join(e.BaseDir(), file)
}

// Resources returns a copy of the SLURM resource specification, if one is set.
func (e *Experiment) Resources() (slurm.ResourceSpec, bool) {
	if e.resources == nil {
		return slurm.ResourceSpec{}, false
	}
	return e.resources.Copy(), true
}

// SetResources replaces the SLURM resource specification. It's persisted on the next Save.
func (e *Experiment) SetResources(resources slurm.ResourceSpec) {
	r := resources.Copy()
	e.resources = &r
}

// AddJob appends a job and returns its id.
// It fails with ErrDuplicateJob if a job with the same variables already exists; the
// configuration plays no part in that check.
func (e *Experiment) AddJob(variables map[string]any, configuration map[string]any) (int, error) {
	normalisedVariables, err := normalise(variables)
	if err != nil {
		return -1, errors.WithMessage(err, "invalid job variables")
	}
	normalisedConfiguration, err := normalise(configuration)
	if err != nil {
		return -1, errors.WithMessage(err, "invalid job configuration")
	}
	for id, job := range e.Jobs {
		if sameVariables(job.Variables, normalisedVariables) {
			return -1, errors.WithStack(&expctlerrors.ErrDuplicateJob{
				Variables:  variables,
				ExistingId: id,
			})
		}
	}
	e.Jobs = append(e.Jobs, Job{
		Variables:     normalisedVariables,
		Configuration: normalisedConfiguration,
	})
	return len(e.Jobs) - 1, nil
}

// Save writes the experiment to <base>/config.json, and the resource specification (if any)
// to <base>/slurm_config.json. Previous snapshots are overwritten.
func (e *Experiment) Save() error {
	if err := os.MkdirAll(e.BaseDir(), 0o755); err != nil {
		return errors.Wrapf(err, "error creating experiment directory %s", e.BaseDir())
	}
	jobs := e.Jobs
	if jobs == nil {
		jobs = []Job{}
	}
	variables := e.Variables
	if variables == nil {
		variables = []string{}
	}
	data, err := json.Marshal(experimentDocument{Variables: variables, Jobs: jobs})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(e.path(ConfigFile), data, 0o644); err != nil {
		return errors.Wrapf(err, "error saving experiment %s", e.Name)
	}
	if e.resources != nil {
		if err := e.resources.Save(e.path(SlurmConfigFile)); err != nil {
			return err
		}
	}
	log.WithField("experiment", e.Name).Debugf("Experiment saved in %s", e.BaseDir())
	return nil
}

// Load reads the experiment saved under <root>/<name>.
func Load(root string, name string) (*Experiment, error) {
	e, err := New(nil, name, root, nil)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(e.path(ConfigFile))
	if os.IsNotExist(err) {
		return nil, errors.WithStack(&expctlerrors.ErrNotFound{
			Type:    "experiment",
			Value:   e.path(ConfigFile),
			Message: "has the experiment been saved?",
		})
	} else if err != nil {
		return nil, errors.Wrapf(err, "error reading experiment %s", name)
	}
	doc := experimentDocument{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "error decoding %s", e.path(ConfigFile))
	}
	e.Variables = doc.Variables
	if doc.Jobs != nil {
		e.Jobs = doc.Jobs
	}

	if _, err := os.Stat(e.path(SlurmConfigFile)); err == nil {
		resources, err := slurm.LoadResourceSpec(e.path(SlurmConfigFile))
		if err != nil {
			return nil, err
		}
		e.resources = resources
	} else if !os.IsNotExist(err) {
		return nil, errors.WithStack(err)
	}
	return e, nil
}

// GetIds returns, in ascending order, the ids of the jobs whose variables satisfy predicate.
func (e *Experiment) GetIds(predicate Predicate) []int {
	return commonslices.Filter(e.GetAllIds(), func(id int) bool {
		return predicate(e.Jobs[id].Variables)
	})
}

// GetAllIds returns the id of every job.
func (e *Experiment) GetAllIds() []int {
	return commonslices.Range(len(e.Jobs))
}

// GetRandomIds samples n distinct job ids without replacement. The result is sorted.
// A nil random draws from the randomly seeded global source.
func (e *Experiment) GetRandomIds(n int, random *rand.Rand) ([]int, error) {
	if n < 0 || n > len(e.Jobs) {
		return nil, errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "n_jobs",
			Value:   n,
			Message: "must be between 0 and the number of jobs",
		})
	}
	perm := rand.Perm
	if random != nil {
		perm = random.Perm
	}
	ids := perm(len(e.Jobs))[:n]
	slices.Sort(ids)
	return ids, nil
}
