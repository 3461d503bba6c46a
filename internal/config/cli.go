package config

import "fmt"

// ProfilerName is one of the --profile values from spec §6.
type ProfilerName string

const (
	ProfilerJFR         ProfilerName = "jfr"
	ProfilerHP          ProfilerName = "hp"
	ProfilerYourKit     ProfilerName = "yourkit"
	ProfilerJProfiler   ProfilerName = "jprofiler"
	ProfilerBuildScan   ProfilerName = "buildscan"
	ProfilerChromeTrace ProfilerName = "chrome-trace"
)

// CLIOptions is the parsed shape of the flags in spec §6. Parsing the
// flags themselves is out of scope for the orchestrator (spec §1); only
// this resulting structure matters. cmd/buildbench binds cobra flags
// into one of these.
type CLIOptions struct {
	ProjectDir      string
	OutputDir       string
	GradleVersions  []string
	ScenarioFile    string
	Benchmark       bool
	Profilers       []ProfilerName
	NoDaemon        bool
	Warmups         int // 0 means "use the schedule default"
	Iterations      int
	DryRun          bool
	Buck            bool
	Maven           bool
	BuildScanVersion string
	GradleUserHome  string

	YourKitSampling bool
	YourKitMemory   bool
	JProfilerArgs   []string

	SystemProperties map[string]string
	ScenarioNames    []string

	// Tasks holds the trailing positional arguments when no scenario
	// file is given; they become the implicit "default" scenario's
	// Gradle task list. When a scenario file is present, the trailing
	// args populate ScenarioNames instead (spec §6).
	Tasks []string
}

// Validate enforces the Orchestrator's step-1 preconditions (spec §4.8):
// a mode flag and a project directory are both required.
func (o *CLIOptions) Validate() error {
	if !o.Benchmark && len(o.Profilers) == 0 {
		return fmt.Errorf("Neither --profile or --benchmark specified.")
	}
	if o.ProjectDir == "" {
		return fmt.Errorf("No project directory specified.")
	}
	return nil
}

// EffectiveGradleUserHome returns the isolated user-home directory,
// defaulting to ./gradle-user-home (spec §4.3) when unset.
func (o *CLIOptions) EffectiveGradleUserHome() string {
	if o.GradleUserHome != "" {
		return o.GradleUserHome
	}
	return "./gradle-user-home"
}

// EffectiveBuildScanVersion returns the build-scan plugin version,
// defaulting to 1.6 (spec §4.6) when unset.
func (o *CLIOptions) EffectiveBuildScanVersion() string {
	if o.BuildScanVersion != "" {
		return o.BuildScanVersion
	}
	return "1.6"
}
