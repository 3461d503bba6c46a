package profiler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/glincker/buildbench/internal/invoker"
	"github.com/rs/zerolog/log"
)

// HonestProfiler injects the Honest Profiler agent via JVM args,
// dumps the raw log at the end of the measured series, runs an
// external sanitizer over it, and optionally renders a flame graph
// when FG_HOME_DIR is set (spec §4.6).
type HonestProfiler struct {
	AgentPath string
}

func NewHonestProfiler(agentPath string) *HonestProfiler {
	return &HonestProfiler{AgentPath: agentPath}
}

func (h *HonestProfiler) Name() string { return "hp" }

func (h *HonestProfiler) AdjustConfig(cfg *invoker.GradleConfig) {
	cfg.GradleArgs = append(cfg.GradleArgs,
		fmt.Sprintf("-Dorg.gradle.jvmargs=-agentpath:%s=start,file=hp.log", h.AgentPath))
}

func (h *HonestProfiler) BeforeMeasured(ctx context.Context, pid int) error { return nil }

func (h *HonestProfiler) AfterMeasured(ctx context.Context, pid int) error { return nil }

func (h *HonestProfiler) Finalize(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiler output directory: %w", err)
	}

	rawLog := "hp.log"
	if _, err := os.Stat(rawLog); err != nil {
		return nil // agent never attached; nothing to sanitize
	}

	sanitized := filepath.Join(outputDir, "hp-sanitized.txt")
	cmd := exec.CommandContext(ctx, "hp-sanitizer", rawLog, sanitized)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("hp-sanitizer failed: %w: %s", err, out)
	}
	if err := os.Rename(rawLog, filepath.Join(outputDir, "hp.log")); err != nil {
		return fmt.Errorf("failed to move hp raw log: %w", err)
	}

	fgHome := os.Getenv("FG_HOME_DIR")
	if fgHome == "" {
		return nil
	}

	flameGraphScript := filepath.Join(fgHome, "flamegraph.pl")
	flameGraphOut := filepath.Join(outputDir, "flamegraph.svg")
	cmd = exec.CommandContext(ctx, flameGraphScript, sanitized)
	output, err := cmd.Output()
	if err != nil {
		log.Warn().Err(err).Msg("flame graph generation failed, leaving sanitized profile only")
		return nil
	}
	return os.WriteFile(flameGraphOut, output, 0o644)
}
