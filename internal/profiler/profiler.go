// Package profiler implements the Profiler capability set (spec §4.6):
// one tagged variant per supported profiler, each able to adjust the
// Gradle invocation at startup, bracket the measured series around a
// daemon PID, and finalize artifacts into the output directory.
package profiler

import (
	"context"

	"github.com/glincker/buildbench/internal/invoker"
)

// Profiler is the four-operation capability set shared by every
// variant (spec §9 "Profiler polymorphism"). Composition is an ordered
// slice: the Orchestrator iterates it in the same order for attach and
// detach so artifacts from multiple simultaneously-requested profilers
// never collide.
type Profiler interface {
	// Name identifies the variant for log lines and artifact naming.
	Name() string

	// AdjustConfig mutates the shared Gradle invocation config before
	// the daemon/process starts (JVM agent args, init-scripts, system
	// properties). No-op for profilers that only need a PID.
	AdjustConfig(cfg *invoker.GradleConfig)

	// BeforeMeasured starts recording against pid, if the variant needs
	// one. pid is 0 when no daemon backs the invocation (e.g. no-daemon
	// Gradle, or a variant that doesn't require pid-scoped control).
	BeforeMeasured(ctx context.Context, pid int) error

	// AfterMeasured stops recording against pid.
	AfterMeasured(ctx context.Context, pid int) error

	// Finalize moves/writes the variant's artifacts under outputDir.
	Finalize(ctx context.Context, outputDir string) error
}

// RequiresDaemon reports whether a profiler can only attach to a
// long-lived Gradle daemon (spec §4.6: "JFR: requires tool-api mode").
func RequiresDaemon(p Profiler) bool {
	_, ok := p.(*JFR)
	return ok
}
