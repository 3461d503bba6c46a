// Package orchestrator implements the top-level loop (spec §4.8) that
// wires the Scenario Model, Invocation Schedule, Build Invoker,
// Mutator Engine, Profiler Control, and Results Aggregator together.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/glincker/buildbench/internal/aggregator"
	"github.com/glincker/buildbench/internal/buildlog"
	"github.com/glincker/buildbench/internal/config"
	"github.com/glincker/buildbench/internal/invoker"
	"github.com/glincker/buildbench/internal/metrics"
	"github.com/glincker/buildbench/internal/mutator"
	"github.com/glincker/buildbench/internal/profiler"
	"github.com/glincker/buildbench/internal/scenario"
	"github.com/glincker/buildbench/internal/schedule"
	"github.com/rs/zerolog/log"
)

// plannedExecution is one (scenario, resolved build tool, version)
// tuple pending expansion into a ScenarioExecution (spec §4.8 step 2).
type plannedExecution struct {
	scenario *scenario.Scenario
	tool     scenario.BuildTool
	version  string
}

// invokerFactory builds the Invoker for one ScenarioExecution. Run uses
// buildInvoker; tests substitute a factory returning an
// invoker.FakeInvoker so the orchestration loop can be exercised
// end-to-end without shelling out to a real build tool.
type invokerFactory func(tool scenario.BuildTool, s *scenario.Scenario, version, gradleUserHome, projectDir string, opts *config.CLIOptions, profilers []profiler.Profiler, logWriter io.Writer) (invoker.Invoker, error)

// Run drives the whole orchestration described in spec §4.8. It
// returns a *ScenarioFailedError wrapping the first execution failure
// encountered, or a *ConfigurationError for fatal pre-invocation
// problems. sink may be nil, in which case lifecycle events are
// discarded. Cancelling ctx (spec §5: interruption still runs mutator
// revert and invoker shutdown) stops further invocations from
// starting but lets the current ScenarioExecution's cleanup complete.
func Run(ctx context.Context, opts *config.CLIOptions, doc *config.Document, sink schedule.Sink) error {
	return run(ctx, opts, doc, sink, buildInvoker)
}

func run(ctx context.Context, opts *config.CLIOptions, doc *config.Document, sink schedule.Sink, newInvoker invokerFactory) error {
	if err := opts.Validate(); err != nil {
		return &ConfigurationError{Message: err.Error()}
	}
	if sink == nil {
		sink = schedule.NoopSink{}
	}

	scenarios, err := expandScenarios(opts, doc)
	if err != nil {
		return &ConfigurationError{Message: err.Error()}
	}

	plan := planExecutions(scenarios, opts)
	scenarioCount := distinctScenarioCount(plan)
	versionCounts := versionCountsByScenario(plan)
	total := len(plan)

	table := aggregator.NewTable()
	var firstFailure *ScenarioFailedError

	for i, pe := range plan {
		exec := scenario.NewExecution(pe.scenario, pe.version, i+1, total)
		label := exec.ColumnLabel(scenarioCount)

		sink.Emit(schedule.Event{
			Kind: schedule.EventScenarioStart, ScenarioName: pe.scenario.Name,
			Version: pe.version, Index: i + 1, Total: total,
		})

		col, execErr := runExecution(ctx, exec, label, pe, opts, scenarioCount, versionCounts[pe.scenario.Name], sink, newInvoker)
		table.AddColumn(col)

		sink.Emit(schedule.Event{
			Kind: schedule.EventScenarioEnd, ScenarioName: pe.scenario.Name,
			Version: pe.version, Index: i + 1, Total: total, Failed: execErr != nil, Err: execErr,
		})

		if execErr != nil {
			buildlog.FailureMarker()
			metrics.RecordScenarioFailure()
			if firstFailure == nil {
				firstFailure = &ScenarioFailedError{ScenarioName: pe.scenario.Name, Version: pe.version, First: execErr}
			}
			log.Error().Err(execErr).Str("scenario", pe.scenario.Name).Str("version", pe.version).
				Msg("scenario execution failed, continuing with remaining executions")
		}

		if ctx.Err() != nil {
			break // interrupted: this execution's own cleanup already ran; don't start the next one
		}
	}

	if opts.Benchmark {
		if err := writeCSV(table, opts.OutputDir); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
	}

	if firstFailure != nil {
		return firstFailure
	}
	if ctx.Err() != nil {
		return fmt.Errorf("run interrupted: %w", ctx.Err())
	}
	return nil
}

func writeCSV(table *aggregator.Table, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	path := filepath.Join(outputDir, "benchmark.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	return table.WriteCSV(f)
}

// expandScenarios resolves the scenario file's named scenarios, or, in
// its absence, synthesizes the implicit "default" scenario driven
// purely by CLI flags (spec §4.1, §9 Open Question).
func expandScenarios(opts *config.CLIOptions, doc *config.Document) ([]*scenario.Scenario, error) {
	if doc != nil {
		return doc.Resolve(opts.ScenarioNames)
	}
	return []*scenario.Scenario{{
		Name:      "default",
		BuildTool: scenario.Gradle,
		Tasks:     opts.Tasks,
	}}, nil
}

// planExecutions expands each scenario into one plannedExecution per
// version, applying the --buck/--maven tool overrides (spec §4.4) and
// the version-resolution fallback chain (spec §4.1).
func planExecutions(scenarios []*scenario.Scenario, opts *config.CLIOptions) []plannedExecution {
	var plan []plannedExecution
	for _, s := range scenarios {
		tool, ok := effectiveBuildTool(s, opts)
		if !ok {
			continue // scenario lacks the block the CLI override requires
		}

		if tool != scenario.Gradle {
			plan = append(plan, plannedExecution{scenario: s, tool: tool, version: ""})
			continue
		}

		for _, v := range resolveVersions(s, opts) {
			plan = append(plan, plannedExecution{scenario: s, tool: tool, version: v})
		}
	}
	return plan
}

func distinctScenarioCount(plan []plannedExecution) int {
	seen := map[string]bool{}
	for _, pe := range plan {
		seen[pe.scenario.Name] = true
	}
	return len(seen)
}

func versionCountsByScenario(plan []plannedExecution) map[string]int {
	counts := map[string]int{}
	for _, pe := range plan {
		counts[pe.scenario.Name]++
	}
	return counts
}

// cleanupTimeout bounds the fresh context used for shutdown/finalize
// calls that must still run after ctx has been cancelled (spec §5:
// interruption still runs mutator revert and invoker shutdown). Using
// the run's own ctx here would make exec.CommandContext refuse to
// even start the cleanup subprocess.
const cleanupTimeout = 30 * time.Second

// runExecution drives one ScenarioExecution's full schedule (spec
// §4.8 step 3): acquire mutator, acquire invoker (+ probe), run every
// invocation, finalize profilers, release invoker, revert mutator.
func runExecution(ctx context.Context, exec scenario.ScenarioExecution, label string, pe plannedExecution, opts *config.CLIOptions, scenarioCount, versionCount int, sink schedule.Sink, newInvoker invokerFactory) (*aggregator.Column, error) {
	s := pe.scenario

	mut, release, err := mutator.Acquire(s.Mutator)
	if err != nil {
		return aggregator.NewColumn(label, nil, false, 0, 0), err
	}
	defer release()

	profilers, err := buildProfilers(opts)
	if err != nil {
		return aggregator.NewColumn(label, nil, false, 0, 0), err
	}

	outDir := outputPath(opts.OutputDir, scenarioCount, versionCount, s.Name, pe.version)
	gradleUserHome := gradleUserHomeFor(opts.EffectiveGradleUserHome(), exec.RunID.String())

	logFile, logClose := openExecutionLog(outDir)
	defer logClose()

	effectiveRunUsing := s.EffectiveRunUsing()
	if opts.NoDaemon {
		effectiveRunUsing = scenario.NoDaemon
	}

	inv, err := newInvoker(pe.tool, s, pe.version, gradleUserHome, opts.ProjectDir, opts, profilers, logFile)
	if err != nil {
		return aggregator.NewColumn(label, nil, false, 0, 0), err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		if err := inv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Str("scenario", s.Name).Msg("invoker shutdown failed")
		}
	}()

	sched := schedule.Build(schedule.Params{
		Tool:               pe.tool,
		RunUsing:           effectiveRunUsing,
		Benchmark:          opts.Benchmark,
		Tasks:              s.Tasks,
		CleanupTasks:       s.CleanupTasks,
		WarmupsOverride:    opts.Warmups,
		IterationsOverride: opts.Iterations,
		DryRun:             opts.DryRun,
		HasMutator:         s.Mutator != nil,
		Profiling:          len(opts.Profilers) > 0,
	})

	tasksRow := s.Tasks
	if pe.tool != scenario.Gradle {
		tasksRow = nil
	}
	col := aggregator.NewColumn(label, tasksRow, sched.HasInitial, sched.Warmups, sched.Iterations)

	daemonPID := 0
	var firstErr error

	if sched.HasProbe {
		env, probeErr := inv.Probe(ctx)
		if probeErr != nil {
			return col, fmt.Errorf("probe failed for scenario '%s': %w", s.Name, probeErr)
		}
		daemonPID = env.PID
	}

	for _, iv := range sched.Invocations {
		if iv.Kind == scenario.KindProbe {
			continue // already run above
		}

		if ctx.Err() != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("scenario '%s' interrupted before '%s': %w", s.Name, iv.Label, ctx.Err())
			}
			break
		}

		if iv.MutatorApplied {
			if err := mut.Apply(iv.MutatorIndex); err != nil {
				return col, fmt.Errorf("failed to apply mutator for '%s': %w", iv.Label, err)
			}
		}

		sink.Emit(schedule.Event{Kind: schedule.EventInvocationStart, Label: iv.Label})

		if iv.Kind == scenario.KindMeasured {
			for _, p := range profilers {
				if err := p.BeforeMeasured(ctx, daemonPID); err != nil {
					log.Warn().Err(err).Str("profiler", p.Name()).Msg("profiler pre-measurement hook failed")
				}
			}
		}

		result, runErr := inv.Run(ctx, toInvocation(iv, opts.DryRun))

		if iv.Kind == scenario.KindMeasured {
			for _, p := range profilers {
				if err := p.AfterMeasured(ctx, daemonPID); err != nil {
					log.Warn().Err(err).Str("profiler", p.Name()).Msg("profiler post-measurement hook failed")
				}
			}
		}
		if result.PID != 0 {
			daemonPID = result.PID
		}

		logRunLine(iv)
		sink.Emit(schedule.Event{Kind: schedule.EventInvocationEnd, Label: iv.Label, Duration: result.Duration, Failed: runErr != nil, Err: runErr})

		metrics.RecordInvocation(s.Name, string(iv.Kind), runErr == nil, result.Duration.Seconds())
		recordResult(col, iv, result, runErr)

		if runErr != nil && firstErr == nil {
			firstErr = fmt.Errorf("invocation '%s' failed: %w", iv.Label, runErr)
		}
	}

	finalizeCtx, cancelFinalize := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancelFinalize()
	for _, p := range profilers {
		if err := p.Finalize(finalizeCtx, outDir); err != nil {
			log.Warn().Err(err).Str("profiler", p.Name()).Msg("profiler finalize failed")
		}
	}

	return col, firstErr
}

// toInvocation adapts a scheduled scenario.Invocation into the minimal
// shape an invoker.Invoker needs to run it (spec §4.3's Invocation).
// DryRun applies to every invocation routed through here (initial clean
// build, warm-ups, measured builds), never the untimed probe, which the
// caller never routes through here.
func toInvocation(iv scenario.Invocation, dryRun bool) invoker.Invocation {
	return invoker.Invocation{
		Label:  iv.Label,
		Tasks:  iv.Tasks,
		DryRun: dryRun,
	}
}

func logRunLine(iv scenario.Invocation) {
	switch iv.Kind {
	case scenario.KindWarmup:
		log.Info().Msg("* Running warm-up build")
	case scenario.KindMeasured:
		log.Info().Msg("* Running build")
	}
}

// recordResult writes one invocation's outcome into its Aggregator row
// (spec §4.7): a nil duration on failure leaves the cell empty, never
// counted toward mean/median/stddev.
func recordResult(col *aggregator.Column, iv scenario.Invocation, result invoker.Result, err error) {
	var d *time.Duration
	if err == nil {
		dur := result.Duration
		d = &dur
	}

	switch iv.Kind {
	case scenario.KindInitial:
		col.Initial = d
	case scenario.KindWarmup:
		col.RecordWarmup(iv.Sequence, d)
	case scenario.KindMeasured:
		col.RecordMeasured(iv.Sequence, d)
	}
}

func openExecutionLog(outDir string) (*os.File, func()) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, func() {}
	}
	f, err := os.OpenFile(filepath.Join(outDir, "profile.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}
	}
	return f, func() { f.Close() }
}
