package invoker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// DaemonInvoker drives Gradle in tool-api mode: one long-lived daemon is
// reused for every invocation in a ScenarioExecution (spec §4.3).
type DaemonInvoker struct {
	cfg *GradleConfig

	daemonPID  int
	discarded  bool
}

// NewDaemonInvoker builds a tool-api invoker bound to an isolated user
// home. Each ScenarioExecution owns its own instance exclusively (spec
// §3 lifecycle rules).
func NewDaemonInvoker(cfg *GradleConfig) *DaemonInvoker {
	return &DaemonInvoker{cfg: cfg}
}

func (d *DaemonInvoker) Probe(ctx context.Context) (Environment, error) {
	_, output, err := runStreamed(ctx, d.cfg.ProjectDir, d.cfg.env(), d.cfg.LogWriter, gradleBinary, d.cfg.buildArgs([]string{"help"}, false, false)...)
	if err != nil {
		return Environment{}, fmt.Errorf("gradle probe failed: %w", err)
	}

	version := parseGradleVersion(output)
	if version == "" {
		version = d.cfg.Version
	}

	pid, pidErr := findDaemonPID(ctx, d.cfg.GradleUserHome)
	if pidErr != nil {
		log.Warn().Err(pidErr).Str("user_home", d.cfg.GradleUserHome).Msg("could not resolve gradle daemon pid after probe")
	} else {
		d.daemonPID = pid
	}

	log.Info().Str("version", version).Int("pid", d.daemonPID).Msg("gradle daemon probed")
	return Environment{Version: version, Daemon: true, PID: d.daemonPID}, nil
}

func (d *DaemonInvoker) Run(ctx context.Context, inv Invocation) (Result, error) {
	args := d.cfg.buildArgs(inv.Tasks, false, inv.DryRun)
	duration, output, err := runStreamed(ctx, d.cfg.ProjectDir, d.cfg.env(), d.cfg.LogWriter, gradleBinary, args...)

	if err != nil {
		if isConnectionFailure(output) {
			d.discarded = true
			log.Warn().Str("label", inv.Label).Msg("gradle daemon connection lost, will re-probe on next scenario")
		}
		return Result{Duration: duration, Failed: true, Err: err, PID: d.daemonPID, Daemon: true}, err
	}

	if d.daemonPID == 0 {
		if pid, pidErr := findDaemonPID(ctx, d.cfg.GradleUserHome); pidErr == nil {
			d.daemonPID = pid
		}
	}

	return Result{Duration: duration, PID: d.daemonPID, Daemon: true}, nil
}

func (d *DaemonInvoker) Shutdown(ctx context.Context) error {
	_, _, err := runStreamed(ctx, d.cfg.ProjectDir, d.cfg.env(), d.cfg.LogWriter, gradleBinary, "--stop")
	if err != nil {
		return fmt.Errorf("failed to stop gradle daemon: %w", err)
	}
	return nil
}

// Discarded reports whether the daemon was marked for discard after a
// connection-level failure (spec §4.3).
func (d *DaemonInvoker) Discarded() bool { return d.discarded }
