// Command buildbench drives repeated builds of a Gradle, Buck, or Maven
// project, optionally profiling and mutating source between runs, and
// aggregates the results into a CSV report (spec §1, §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/glincker/buildbench/internal/buildlog"
	"github.com/glincker/buildbench/internal/config"
	"github.com/glincker/buildbench/internal/metrics"
	"github.com/glincker/buildbench/internal/orchestrator"
	"github.com/glincker/buildbench/internal/version"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	opts            config.CLIOptions
	profileFlags    []string
	systemProps     []string
	logLevel        string
	dumpMetricsPath string
)

var rootCmd = &cobra.Command{
	Use:     "buildbench [flags] [scenario-names-or-tasks...]",
	Short:   "Benchmark and profile Gradle, Buck, and Maven builds",
	Version: version.Get().Version,
	Long: `buildbench runs a project's build repeatedly, optionally profiling
and mutating source between invocations, and reports the timings.

Common Tasks:
  buildbench --benchmark --project-dir . assemble
  buildbench --profile jfr --project-dir . --scenario-file scenarios.yaml
  buildbench --benchmark --buck --project-dir . --scenario-file scenarios.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBuildbench,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&opts.ProjectDir, "project-dir", "", "Root directory of the project under test")
	flags.StringVar(&opts.OutputDir, "output-dir", ".", "Directory to write profiler output and the benchmark CSV to")
	flags.StringArrayVar(&opts.GradleVersions, "gradle-version", nil, "Gradle version to benchmark (repeatable)")
	flags.StringVar(&opts.ScenarioFile, "scenario-file", "", "YAML file describing one or more scenarios")
	flags.StringVar(&opts.ScenarioFile, "config-file", "", "Alias for --scenario-file")
	flags.BoolVar(&opts.Benchmark, "benchmark", false, "Benchmark each scenario and write a CSV report")
	flags.StringArrayVar(&profileFlags, "profile", nil, "Profiler to run: jfr, hp, yourkit, jprofiler, buildscan, chrome-trace (repeatable)")
	flags.BoolVar(&opts.NoDaemon, "no-daemon", false, "Run Gradle without a daemon between invocations")
	flags.IntVar(&opts.Warmups, "warmups", 0, "Override warm-up build count (profile mode only)")
	flags.IntVar(&opts.Iterations, "iterations", 0, "Override measured build count (profile mode only)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Run a single warm-up and a single measured build of each scenario")
	flags.BoolVar(&opts.Buck, "buck", false, "Build using Buck instead of Gradle")
	flags.BoolVar(&opts.Maven, "maven", false, "Build using Maven instead of Gradle")
	flags.StringVar(&opts.BuildScanVersion, "buildscan-version", "", "com.gradle.build-scan plugin version (default 1.6)")
	flags.StringVar(&opts.GradleUserHome, "gradle-user-home", "", "Isolated GRADLE_USER_HOME (default ./gradle-user-home)")
	flags.BoolVar(&opts.YourKitSampling, "yourkit-sampling", false, "Use YourKit sampling instead of tracing")
	flags.BoolVar(&opts.YourKitMemory, "yourkit-memory", false, "Enable YourKit memory allocation profiling")
	flags.StringArrayVar(&opts.JProfilerArgs, "jprofiler-config", nil, "Additional JProfiler agent arguments (repeatable)")
	flags.StringArrayVarP(&systemProps, "system-property", "D", nil, "System property key=value to pass to every build (repeatable)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&dumpMetricsPath, "dump-metrics", "", "Write internal Prometheus metrics in text format to this file on exit")

	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)
}

func runBuildbench(cmd *cobra.Command, args []string) error {
	opts.Profilers = make([]config.ProfilerName, 0, len(profileFlags))
	for _, p := range profileFlags {
		opts.Profilers = append(opts.Profilers, config.ProfilerName(p))
	}

	props, err := parseSystemProperties(systemProps)
	if err != nil {
		return err
	}
	opts.SystemProperties = props

	var doc *config.Document
	if opts.ScenarioFile != "" {
		doc, err = config.LoadScenarioFile(opts.ScenarioFile)
		if err != nil {
			return err
		}
		opts.ScenarioNames = args
	} else {
		opts.Tasks = args
	}

	sink, err := buildlog.Setup(logLevel, opts.OutputDir)
	if err != nil {
		return err
	}
	defer sink.Close()

	metrics.InitGlobal()
	if dumpMetricsPath != "" {
		defer dumpMetrics(dumpMetricsPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	go func() {
		<-quit
		log.Info().Msg("interrupt received, reverting mutator and stopping invoker after the current invocation...")
		cancel()
	}()

	runErr := orchestrator.Run(ctx, &opts, doc, nil)
	if runErr != nil {
		log.Error().Err(runErr).Msg("build run did not complete successfully")
	}
	return runErr
}

// parseSystemProperties turns "key=value" entries from -D into the map
// the Orchestrator passes through to every Gradle invocation.
func parseSystemProperties(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	props := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid system property %q, expected key=value", e)
		}
		props[k] = v
	}
	return props, nil
}

func dumpMetrics(path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to create metrics dump file")
		return
	}
	defer f.Close()
	if err := metrics.DefaultCollector.Dump(f); err != nil {
		log.Warn().Err(err).Msg("failed to write metrics dump")
	}
}

func main() {
	// Exit codes per spec §6: 0 on full success, non-zero on any
	// configuration or scenario failure. runBuildbench's RunE return
	// covers both cases, so Execute's error alone decides the exit code.
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
