package profiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glincker/buildbench/internal/invoker"
)

// YourKit injects the YourKit Java Profiler agent via JVM args at
// daemon startup and dumps a snapshot at the end of the measured
// series (spec §4.6).
type YourKit struct {
	AgentPath string
	Sampling  bool
	Memory    bool
}

func NewYourKit(agentPath string, sampling, memory bool) *YourKit {
	return &YourKit{AgentPath: agentPath, Sampling: sampling, Memory: memory}
}

func (y *YourKit) Name() string { return "yourkit" }

func (y *YourKit) AdjustConfig(cfg *invoker.GradleConfig) {
	opts := "disablealloc"
	if y.Sampling {
		opts = "sampling"
	}
	if y.Memory {
		opts += ",alloceach=1"
	}
	cfg.GradleArgs = append(cfg.GradleArgs,
		fmt.Sprintf("-Dorg.gradle.jvmargs=-agentpath:%s=%s", y.AgentPath, opts))
}

func (y *YourKit) BeforeMeasured(ctx context.Context, pid int) error { return nil }

func (y *YourKit) AfterMeasured(ctx context.Context, pid int) error { return nil }

// Finalize moves any .snapshot files the agent wrote into the current
// working directory to outputDir, alongside the other profilers'
// artifacts. It writes no file of its own.
func (y *YourKit) Finalize(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiler output directory: %w", err)
	}
	matches, err := filepath.Glob("*.snapshot")
	if err != nil {
		return fmt.Errorf("failed to glob yourkit snapshots: %w", err)
	}
	for _, m := range matches {
		if err := os.Rename(m, filepath.Join(outputDir, filepath.Base(m))); err != nil {
			return fmt.Errorf("failed to move yourkit snapshot %s: %w", m, err)
		}
	}
	return nil
}
