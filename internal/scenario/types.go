// Package scenario defines the immutable description of what to build:
// Scenario, its build-tool sub-configs, and the mutator it may apply.
package scenario

import "fmt"

// BuildTool selects which external build tool a scenario drives.
type BuildTool string

const (
	Gradle BuildTool = "gradle"
	Buck   BuildTool = "buck"
	Maven  BuildTool = "maven"
)

func (t BuildTool) String() string { return string(t) }

// RunUsing selects how a Gradle scenario talks to Gradle.
type RunUsing string

const (
	ToolAPI  RunUsing = "tool-api"
	NoDaemon RunUsing = "no-daemon"
)

func (r RunUsing) String() string { return string(r) }

// MutatorKind selects which reversible source edit a scenario applies
// between invocations.
type MutatorKind string

const (
	ABIJava               MutatorKind = "abi-java"
	NonABIJava            MutatorKind = "non-abi-java"
	AndroidResource       MutatorKind = "android-resource"
	AndroidResourceValue  MutatorKind = "android-resource-value"
)

// MutatorSpec names the edit kind and the file it targets.
type MutatorSpec struct {
	Kind       MutatorKind
	TargetFile string
}

// BuckSpec configures a scenario that builds with Buck. Exactly one of
// Targets or Type should be set; Type == "all" means "every target".
type BuckSpec struct {
	Targets []string
	Type    string
}

// MavenSpec configures a scenario that builds with Maven.
type MavenSpec struct {
	Targets []string
}

// Scenario is an immutable description of one reproducible build, as
// loaded from the scenario file. A Scenario combined with one version
// yields one ScenarioExecution.
type Scenario struct {
	Name             string
	BuildTool        BuildTool
	Versions         []string
	Tasks            []string
	CleanupTasks     []string
	RunUsing         RunUsing
	SystemProperties map[string]string
	GradleArgs       []string
	Mutator          *MutatorSpec
	Buck             *BuckSpec
	Maven            *MavenSpec
}

// EffectiveRunUsing returns the scenario's run-using mode, defaulting to
// tool-api when unset.
func (s *Scenario) EffectiveRunUsing() RunUsing {
	if s.RunUsing == "" {
		return ToolAPI
	}
	return s.RunUsing
}

// Validate checks that buck.targets and buck.type are not both set. The
// at-most-one-mutator rule is checked by the config loader, not here.
func (s *Scenario) Validate() error {
	if s.Buck != nil && len(s.Buck.Targets) > 0 && s.Buck.Type != "" {
		return fmt.Errorf("scenario '%s': buck.targets and buck.type are mutually exclusive", s.Name)
	}
	return nil
}
