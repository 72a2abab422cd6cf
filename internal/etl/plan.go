package etl

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/yourbasic/graph"

	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// Phase groups steps. All staging steps run before any transform step.
type Phase int

const (
	PhaseStaging Phase = iota
	PhaseTransform
)

func (p Phase) String() string {
	switch p {
	case PhaseStaging:
		return "staging"
	case PhaseTransform:
		return "transform"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Step is one named, individually committed statement.
type Step struct {
	Name      string
	Phase     Phase
	Table     string
	DependsOn []string
	SQL       string
}

// Plan is an ordered list of steps. Steps run in slice order.
type Plan struct {
	Steps []Step

	// Satisfied names dependencies fulfilled outside the plan, such as
	// staging steps skipped because the staging tables are already loaded.
	Satisfied []string
}

// PlanOptions selects the pipeline variant.
type PlanOptions struct {
	Schema      string
	Sources     Sources
	SkipStaging bool
}

// Step names of the fixed pipeline.
const (
	StepCopyEvents      = "copy_staging_events"
	StepCopySongs       = "copy_staging_songs"
	StepInsertSongplays = "insert_songplays"
	StepInsertUsers     = "insert_users"
	StepInsertSongs     = "insert_songs"
	StepInsertArtists   = "insert_artists"
	StepInsertTime      = "insert_time"
)

// NewPipelinePlan builds and validates the fixed pipeline plan.
func NewPipelinePlan(opts PlanOptions) (*Plan, error) {
	src := opts.Sources
	staging := []Step{
		{
			Name:  StepCopyEvents,
			Phase: PhaseStaging,
			Table: dwh.TableStagingEvents,
			SQL:   CopySQL(opts.Schema, dwh.TableStagingEvents, src.LogData, src.LogJSONPath, src.Region, src.IAMRoleARN, true),
		},
		{
			Name:  StepCopySongs,
			Phase: PhaseStaging,
			Table: dwh.TableStagingSongs,
			SQL:   CopySQL(opts.Schema, dwh.TableStagingSongs, src.SongData, "", src.Region, src.IAMRoleARN, false),
		},
	}

	transform := []Step{
		{Name: StepInsertSongplays, Table: dwh.TableSongplays, DependsOn: []string{StepCopyEvents, StepCopySongs}},
		{Name: StepInsertUsers, Table: dwh.TableUsers, DependsOn: []string{StepCopyEvents}},
		{Name: StepInsertSongs, Table: dwh.TableSongs, DependsOn: []string{StepCopySongs}},
		{Name: StepInsertArtists, Table: dwh.TableArtists, DependsOn: []string{StepCopySongs}},
		{Name: StepInsertTime, Table: dwh.TableTime, DependsOn: []string{StepInsertSongplays}},
	}
	for i := range transform {
		transform[i].Phase = PhaseTransform
		transform[i].SQL = InsertSQL(opts.Schema, transform[i].Table)
	}

	plan := &Plan{}
	if opts.SkipStaging {
		plan.Steps = transform
		plan.Satisfied = lo.Map(staging, func(s Step, _ int) string { return s.Name })
	} else {
		plan.Steps = append(staging, transform...)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// StepsIn returns the steps of phase in plan order.
func (p *Plan) StepsIn(phase Phase) []Step {
	return lo.Filter(p.Steps, func(s Step, _ int) bool { return s.Phase == phase })
}

// Validate checks that step names are unique, every dependency exists and
// runs earlier, the dependency graph is acyclic, and no staging step follows
// a transform step. All problems are reported together.
func (p *Plan) Validate() error {
	var problems []string
	index := make(map[string]int, len(p.Steps))

	for i, s := range p.Steps {
		if s.Name == "" {
			problems = append(problems, fmt.Sprintf("step #%d has no name", i+1))
			continue
		}
		if _, dup := index[s.Name]; dup {
			problems = append(problems, fmt.Sprintf("step %q is declared more than once", s.Name))
			continue
		}
		index[s.Name] = i
		if strings.TrimSpace(s.SQL) == "" {
			problems = append(problems, fmt.Sprintf("step %q has no statement", s.Name))
		}
	}

	g := graph.New(len(p.Steps))
	for i, s := range p.Steps {
		for _, dep := range s.DependsOn {
			if dep == s.Name {
				problems = append(problems, fmt.Sprintf("step %q depends on itself", s.Name))
				continue
			}
			j, ok := index[dep]
			if !ok {
				if !lo.Contains(p.Satisfied, dep) {
					problems = append(problems, fmt.Sprintf("step %q depends on unknown step %q", s.Name, dep))
				}
				continue
			}
			g.Add(i, j)
			if j > i {
				problems = append(problems, fmt.Sprintf("step %q runs before its dependency %q", s.Name, dep))
			}
		}
	}

	for _, component := range graph.StrongComponents(g) {
		if len(component) < 2 {
			continue
		}
		names := lo.Map(component, func(i int, _ int) string { return p.Steps[i].Name })
		problems = append(problems, fmt.Sprintf("steps form a cycle: %s", strings.Join(names, ", ")))
	}

	seenTransform := false
	for _, s := range p.Steps {
		switch s.Phase {
		case PhaseTransform:
			seenTransform = true
		case PhaseStaging:
			if seenTransform {
				problems = append(problems, fmt.Sprintf("staging step %q follows a transform step", s.Name))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", dwh.ErrInvalidPlan, strings.Join(problems, "\n  - "))
	}
	return nil
}
