// Package schedule expands a scenario into the ordered list of build
// invocations the Orchestrator drives (spec §3 Schedule, §4.2
// Invocation Schedule).
package schedule

import (
	"fmt"

	"github.com/glincker/buildbench/internal/scenario"
)

// Params is everything the scheduler needs to compute phase widths and
// task lists for one ScenarioExecution.
type Params struct {
	Tool         scenario.BuildTool
	RunUsing     scenario.RunUsing // only consulted when Tool == Gradle
	Benchmark    bool              // false means "profiling without benchmarking"
	Tasks        []string
	CleanupTasks []string

	// WarmupsOverride/IterationsOverride apply only in profile mode
	// (spec §6: "override schedule widths (profile mode only)"); zero
	// means "use the default for this mode".
	WarmupsOverride    int
	IterationsOverride int

	DryRun     bool
	HasMutator bool
	Profiling  bool
}

// Schedule is the expanded invocation list plus the metadata the
// Aggregator needs to size its table before any invocation has run.
type Schedule struct {
	Invocations []scenario.Invocation
	Warmups     int
	Iterations  int
	HasProbe    bool
	HasInitial  bool
}

// Build expands p into a Schedule (spec §3's four-phase list, minus
// probe/initial for buck and maven per §4.4).
func Build(p Params) Schedule {
	warmups, iterations := widths(p)

	s := Schedule{Warmups: warmups, Iterations: iterations}

	if p.Tool == scenario.Gradle {
		s.HasProbe = true
		s.Invocations = append(s.Invocations, scenario.Invocation{
			Kind:  scenario.KindProbe,
			Label: "probe",
			Tasks: []string{"help"},
		})

		if p.Benchmark {
			s.HasInitial = true
			tasks := make([]string, 0, len(p.CleanupTasks)+len(p.Tasks))
			tasks = append(tasks, p.CleanupTasks...)
			tasks = append(tasks, p.Tasks...)
			s.Invocations = append(s.Invocations, scenario.Invocation{
				Kind:  scenario.KindInitial,
				Label: "initial clean build",
				Tasks: tasks,
			})
		}
	}

	mutatorIndex := 0

	for i := 1; i <= warmups; i++ {
		mutatorIndex++
		s.Invocations = append(s.Invocations, scenario.Invocation{
			Kind:           scenario.KindWarmup,
			Label:          fmt.Sprintf("warm-up build %d", i),
			Tasks:          p.Tasks,
			Sequence:       i,
			MutatorIndex:   mutatorIndex,
			MutatorApplied: p.HasMutator,
		})
	}

	for i := 1; i <= iterations; i++ {
		mutatorIndex++
		s.Invocations = append(s.Invocations, scenario.Invocation{
			Kind:           scenario.KindMeasured,
			Label:          fmt.Sprintf("build %d", i),
			Tasks:          p.Tasks,
			Sequence:       i,
			MutatorIndex:   mutatorIndex,
			MutatorApplied: p.HasMutator,
			ProfilingArmed: p.Profiling,
		})
	}

	return s
}

// widths resolves W and I per spec §3: dry-run forces 1/1; benchmark
// mode uses fixed defaults (6 warm-ups, or 1 under no-daemon gradle;
// 10 measured builds) and ignores --warmups/--iterations; profile-only
// mode defaults to 2/1 and honors the overrides.
func widths(p Params) (warmups, iterations int) {
	if p.DryRun {
		return 1, 1
	}

	if p.Benchmark {
		warmups = 6
		if p.Tool == scenario.Gradle && p.RunUsing == scenario.NoDaemon {
			warmups = 1
		}
		return warmups, 10
	}

	warmups, iterations = 2, 1
	if p.WarmupsOverride > 0 {
		warmups = p.WarmupsOverride
	}
	if p.IterationsOverride > 0 {
		iterations = p.IterationsOverride
	}
	return warmups, iterations
}

// RowLabels returns the Aggregator's fixed row order for this schedule
// (spec §4.7): tasks, initial clean build (if present), warm-up build
// 1..W, build 1..I.
func (s Schedule) RowLabels() []string {
	labels := make([]string, 0, 2+s.Warmups+s.Iterations)
	labels = append(labels, "tasks")
	if s.HasInitial {
		labels = append(labels, "initial clean build")
	}
	for i := 1; i <= s.Warmups; i++ {
		labels = append(labels, fmt.Sprintf("warm-up build %d", i))
	}
	for i := 1; i <= s.Iterations; i++ {
		labels = append(labels, fmt.Sprintf("build %d", i))
	}
	return labels
}
