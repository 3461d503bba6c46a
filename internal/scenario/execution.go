package scenario

import (
	"fmt"

	"github.com/google/uuid"
)

// ScenarioExecution is one (scenario, version, build-tool) tuple. It
// produces exactly one column in the aggregated CSV.
type ScenarioExecution struct {
	Scenario *Scenario
	Version  string
	RunID    uuid.UUID

	// Index and Total position this execution within the deterministic
	// ordering of the whole run; ColumnLabel uses Total to detect a
	// single-execution run.
	Index int
	Total int
}

// NewExecution builds a ScenarioExecution with a fresh RunID, used to
// namespace its isolated user-home. Its output directory does not
// include the RunID.
func NewExecution(s *Scenario, version string, index, total int) ScenarioExecution {
	return ScenarioExecution{
		Scenario: s,
		Version:  version,
		RunID:    uuid.New(),
		Index:    index,
		Total:    total,
	}
}

// ColumnLabel computes the CSV header label for this execution.
//
// The three literal cases (spec §6, resolving the header Open Question
// of §9):
//   - exactly one ScenarioExecution in the whole run: the version alone.
//   - more than one scenario version but only the implicit "default"
//     scenario (bare CLI invocation, no scenario file): "default <version>".
//   - anything else (one or more named scenarios from a scenario file):
//     "<scenario> <version>".
func (e ScenarioExecution) ColumnLabel(scenarioCount int) string {
	if e.Version == "" {
		// Buck/Maven scenarios carry one implicit, unnamed version entry.
		return e.Scenario.Name
	}
	if e.Total == 1 {
		return e.Version
	}
	if scenarioCount == 1 && e.Scenario.Name == "default" {
		return fmt.Sprintf("default %s", e.Version)
	}
	return fmt.Sprintf("%s %s", e.Scenario.Name, e.Version)
}

// InvocationKind distinguishes the four phases of spec §3's Schedule.
type InvocationKind string

const (
	KindProbe   InvocationKind = "probe"
	KindInitial InvocationKind = "initial"
	KindWarmup  InvocationKind = "warmup"
	KindMeasured InvocationKind = "measured"
)

// Invocation is one build request within a ScenarioExecution's schedule.
type Invocation struct {
	Kind      InvocationKind
	Label     string
	Tasks     []string
	Sequence  int // 1-based position within its Kind (warm-up N, build N)

	// MutatorIndex is the 1-based position of this invocation within
	// the whole warm-up+measured series, passed to Mutator.Apply.
	// Unlike Sequence it never resets between warm-up and measured
	// phases, so every mutator-applied invocation in a ScenarioExecution
	// edits the target file into distinct content (spec §4.5: "two
	// distinct invocations must produce distinct file contents").
	MutatorIndex int

	MutatorApplied bool
	ProfilingArmed bool
}
