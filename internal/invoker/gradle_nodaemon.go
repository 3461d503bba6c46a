package invoker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// NoDaemonInvoker spawns a fresh `gradle --no-daemon` process for every
// measured/warm-up invocation (spec §4.3). Its probe is the one
// exception: like the tool-api invoker, the probe always runs with a
// daemon to confirm version/liveness (spec §8 scenario 3: `<daemon:
// true>` appears exactly once, for the probe, even under --no-daemon),
// and the temporary daemon it starts is stopped immediately afterward
// so nothing lingers between the no-daemon builds that follow.
type NoDaemonInvoker struct {
	cfg *GradleConfig
}

func NewNoDaemonInvoker(cfg *GradleConfig) *NoDaemonInvoker {
	return &NoDaemonInvoker{cfg: cfg}
}

func (n *NoDaemonInvoker) Probe(ctx context.Context) (Environment, error) {
	_, output, err := runStreamed(ctx, n.cfg.ProjectDir, n.cfg.env(), n.cfg.LogWriter, gradleBinary, n.cfg.buildArgs([]string{"help"}, false, false)...)
	if err != nil {
		return Environment{}, fmt.Errorf("gradle probe failed: %w", err)
	}
	version := parseGradleVersion(output)
	if version == "" {
		version = n.cfg.Version
	}

	if _, _, stopErr := runStreamed(ctx, n.cfg.ProjectDir, n.cfg.env(), n.cfg.LogWriter, gradleBinary, "--stop"); stopErr != nil {
		log.Warn().Err(stopErr).Msg("failed to stop probe daemon before no-daemon builds")
	}

	return Environment{Version: version, Daemon: true}, nil
}

func (n *NoDaemonInvoker) Run(ctx context.Context, inv Invocation) (Result, error) {
	args := n.cfg.buildArgs(inv.Tasks, true, inv.DryRun)
	duration, _, err := runStreamed(ctx, n.cfg.ProjectDir, n.cfg.env(), n.cfg.LogWriter, gradleBinary, args...)
	if err != nil {
		return Result{Duration: duration, Failed: true, Err: err}, err
	}
	return Result{Duration: duration, Daemon: false}, nil
}

// Shutdown is a no-op: no-daemon mode leaves nothing running between
// invocations.
func (n *NoDaemonInvoker) Shutdown(ctx context.Context) error { return nil }
