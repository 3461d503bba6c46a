package orchestrator

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/glincker/buildbench/internal/config"
	"github.com/glincker/buildbench/internal/invoker"
	"github.com/glincker/buildbench/internal/profiler"
	"github.com/glincker/buildbench/internal/scenario"
)

// effectiveBuildTool resolves which tool actually drives this
// scenario, honoring the --buck/--maven CLI overrides (spec §4.4:
// "scenarios with a buck{} block run under buck even if they also
// declare Gradle tasks").
func effectiveBuildTool(s *scenario.Scenario, opts *config.CLIOptions) (scenario.BuildTool, bool) {
	if opts.Buck {
		if s.Buck == nil {
			return "", false // silently skipped (spec §4.4)
		}
		return scenario.Buck, true
	}
	if opts.Maven {
		if s.Maven == nil {
			return "", false
		}
		return scenario.Maven, true
	}
	return s.BuildTool, true
}

// buildInvoker selects and constructs the Invoker variant for one
// ScenarioExecution (spec §4.3/§4.4). Gradle invokers get every
// requested profiler's AdjustConfig applied before the daemon/process
// starts.
func buildInvoker(tool scenario.BuildTool, s *scenario.Scenario, version, gradleUserHome, projectDir string, opts *config.CLIOptions, profilers []profiler.Profiler, logWriter io.Writer) (invoker.Invoker, error) {
	switch tool {
	case scenario.Gradle:
		runUsing := s.EffectiveRunUsing()
		if opts.NoDaemon {
			runUsing = scenario.NoDaemon
		}
		cfg := &invoker.GradleConfig{
			ProjectDir:       projectDir,
			Version:          version,
			GradleUserHome:   gradleUserHome,
			SystemProperties: mergeSystemProperties(opts.SystemProperties, s.SystemProperties),
			GradleArgs:       append([]string{}, s.GradleArgs...),
			LogWriter:        logWriter,
		}
		if runUsing == scenario.NoDaemon {
			for _, p := range profilers {
				if profiler.RequiresDaemon(p) {
					return nil, newConfigurationError("Can only use profiler '%s' on scenario '%s' when running with tool-api; %s requires a long-lived daemon.", p.Name(), s.Name, p.Name())
				}
			}
		}
		for _, p := range profilers {
			p.AdjustConfig(cfg)
		}
		if runUsing == scenario.NoDaemon {
			return invoker.NewNoDaemonInvoker(cfg), nil
		}
		return invoker.NewDaemonInvoker(cfg), nil

	case scenario.Buck:
		if len(opts.Profilers) > 0 {
			return nil, newConfigurationError("Can only profile scenario '%s' when building using Gradle.", s.Name)
		}
		var targets []string
		buckType := "all"
		if s.Buck != nil {
			targets = s.Buck.Targets
			if s.Buck.Type != "" {
				buckType = s.Buck.Type
			}
		}
		return invoker.NewBuckInvoker(&invoker.BuckConfig{
			ProjectDir: projectDir,
			Targets:    targets,
			Type:       buckType,
			LogWriter:  logWriter,
		}), nil

	case scenario.Maven:
		if len(opts.Profilers) > 0 {
			return nil, newConfigurationError("Can only profile scenario '%s' when building using Gradle.", s.Name)
		}
		var targets []string
		if s.Maven != nil {
			targets = s.Maven.Targets
		}
		mavenInvoker, err := invoker.NewMavenInvoker(&invoker.MavenConfig{
			ProjectDir: projectDir,
			Targets:    targets,
			LogWriter:  logWriter,
		})
		if err != nil {
			return nil, err
		}
		return mavenInvoker, nil

	default:
		return nil, newConfigurationError("scenario '%s': unknown build tool %q", s.Name, tool)
	}
}

func mergeSystemProperties(global, scenarioLevel map[string]string) map[string]string {
	merged := make(map[string]string, len(global)+len(scenarioLevel))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range scenarioLevel {
		merged[k] = v
	}
	return merged
}

// buildProfilers maps the requested --profile names to Profiler
// instances (spec §4.6). Multiple flags compose independently.
func buildProfilers(opts *config.CLIOptions) ([]profiler.Profiler, error) {
	profilers := make([]profiler.Profiler, 0, len(opts.Profilers))
	for _, name := range opts.Profilers {
		switch name {
		case config.ProfilerJFR:
			profilers = append(profilers, profiler.NewJFR())
		case config.ProfilerYourKit:
			profilers = append(profilers, profiler.NewYourKit("", opts.YourKitSampling, opts.YourKitMemory))
		case config.ProfilerHP:
			profilers = append(profilers, profiler.NewHonestProfiler(""))
		case config.ProfilerJProfiler:
			profilers = append(profilers, profiler.NewJProfiler("", opts.JProfilerArgs))
		case config.ProfilerChromeTrace:
			profilers = append(profilers, profiler.NewChromeTrace())
		case config.ProfilerBuildScan:
			profilers = append(profilers, profiler.NewBuildScan(opts.EffectiveBuildScanVersion()))
		default:
			return nil, newConfigurationError("unknown profiler %q", name)
		}
	}
	return profilers, nil
}

// outputPath computes the per-execution output directory (spec §6
// "Output layout"): root when the whole run is a single scenario and
// single version, <version>/ when a single scenario has multiple
// versions, <scenario>/ or <scenario>/<version>/ otherwise.
func outputPath(baseDir string, scenarioCount, versionCount int, scenarioName, version string) string {
	switch {
	case scenarioCount <= 1 && versionCount <= 1:
		return baseDir
	case scenarioCount <= 1:
		return filepath.Join(baseDir, version)
	case versionCount <= 1:
		return filepath.Join(baseDir, scenarioName)
	default:
		return filepath.Join(baseDir, scenarioName, version)
	}
}

func gradleUserHomeFor(base string, runID string) string {
	return filepath.Join(base, runID)
}

var distributionURLVersion = regexp.MustCompile(`gradle-(\d+(?:\.\d+){0,2})-`)

// resolveVersions returns the Gradle versions to run a scenario
// against, per spec §4.1's fallback chain: the scenario's own
// `versions`, else the version reported by the project's
// wrapper-properties file, else the --gradle-version CLI default, else
// one implicit unversioned execution.
func resolveVersions(s *scenario.Scenario, opts *config.CLIOptions) []string {
	if len(s.Versions) > 0 {
		return s.Versions
	}
	if v := wrapperPropertiesVersion(opts.ProjectDir); v != "" {
		return []string{v}
	}
	if len(opts.GradleVersions) > 0 {
		return opts.GradleVersions
	}
	return []string{""}
}

// wrapperPropertiesVersion reads the Gradle version pinned by the
// project's gradle/wrapper/gradle-wrapper.properties distributionUrl,
// returning "" when the file is absent or unparseable.
func wrapperPropertiesVersion(projectDir string) string {
	path := filepath.Join(projectDir, "gradle", "wrapper", "gradle-wrapper.properties")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "distributionUrl") {
			continue
		}
		if m := distributionURLVersion.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
