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

// JFR drives the JDK Flight Recorder via jcmd diagnostic commands
// against the Gradle daemon's own PID (spec §4.6). It requires
// tool-api mode; a no-daemon invoker never produces the PID this needs.
type JFR struct {
	recordingName string
}

func NewJFR() *JFR { return &JFR{recordingName: "buildbench"} }

func (j *JFR) Name() string { return "jfr" }

// AdjustConfig is a no-op: JFR attaches post-hoc via jcmd rather than
// at JVM startup.
func (j *JFR) AdjustConfig(cfg *invoker.GradleConfig) {}

func (j *JFR) BeforeMeasured(ctx context.Context, pid int) error {
	if pid == 0 {
		return fmt.Errorf("jfr profiling requires a gradle daemon pid")
	}
	log.Info().Int("pid", pid).Msg("Starting recording for daemon with pid " + fmt.Sprint(pid))
	cmd := exec.CommandContext(ctx, "jcmd", fmt.Sprint(pid), "JFR.start",
		"name="+j.recordingName, "filename=profile.jfr", "settings=profile")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("jcmd JFR.start failed: %w: %s", err, out)
	}
	return nil
}

func (j *JFR) AfterMeasured(ctx context.Context, pid int) error {
	if pid == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, "jcmd", fmt.Sprint(pid), "JFR.stop", "name="+j.recordingName)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("jcmd JFR.stop failed: %w: %s", err, out)
	}
	return nil
}

// Finalize moves the recording the daemon wrote into its working
// directory to outputDir/profile.jfr.
func (j *JFR) Finalize(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiler output directory: %w", err)
	}
	dest := filepath.Join(outputDir, "profile.jfr")
	if err := os.Rename("profile.jfr", dest); err != nil {
		return fmt.Errorf("failed to move jfr recording to %s: %w", dest, err)
	}
	return nil
}
