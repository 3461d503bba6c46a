package profiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glincker/buildbench/internal/invoker"
)

// JProfiler injects the JProfiler agent via JVM args at daemon
// startup; snapshots are dumped at the end of the measured series
// (spec §4.6). Extra tuning flags (`--jprofiler-*`) are forwarded
// verbatim as agent options.
type JProfiler struct {
	AgentPath string
	Args      []string
}

func NewJProfiler(agentPath string, args []string) *JProfiler {
	return &JProfiler{AgentPath: agentPath, Args: args}
}

func (j *JProfiler) Name() string { return "jprofiler" }

func (j *JProfiler) AdjustConfig(cfg *invoker.GradleConfig) {
	opts := "offline,id=100"
	if len(j.Args) > 0 {
		opts += "," + strings.Join(j.Args, ",")
	}
	cfg.GradleArgs = append(cfg.GradleArgs,
		fmt.Sprintf("-Dorg.gradle.jvmargs=-agentpath:%s=%s", j.AgentPath, opts))
}

func (j *JProfiler) BeforeMeasured(ctx context.Context, pid int) error { return nil }

func (j *JProfiler) AfterMeasured(ctx context.Context, pid int) error { return nil }

func (j *JProfiler) Finalize(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiler output directory: %w", err)
	}
	matches, err := filepath.Glob("*.jps")
	if err != nil {
		return fmt.Errorf("failed to glob jprofiler snapshots: %w", err)
	}
	for _, m := range matches {
		if err := os.Rename(m, filepath.Join(outputDir, filepath.Base(m))); err != nil {
			return fmt.Errorf("failed to move jprofiler snapshot %s: %w", m, err)
		}
	}
	return nil
}
