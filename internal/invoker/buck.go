package invoker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

const buckBinary = "buckw"

// BuckConfig configures a Buck-backed invoker.
type BuckConfig struct {
	ProjectDir string
	Targets    []string
	Type       string // "all", a specific Buck rule type, or "" when Targets is set
	LogWriter  io.Writer
}

// BuckInvoker drives Buck (spec §4.4). Buck never runs a probe or an
// initial clean build; its schedule is warm-ups + measured only.
type BuckInvoker struct {
	cfg     *BuckConfig
	targets []string
}

func NewBuckInvoker(cfg *BuckConfig) *BuckInvoker {
	return &BuckInvoker{cfg: cfg}
}

func (b *BuckInvoker) Probe(ctx context.Context) (Environment, error) {
	targets, err := b.resolveTargets(ctx)
	if err != nil {
		return Environment{}, err
	}
	b.targets = targets
	return Environment{}, nil
}

func (b *BuckInvoker) resolveTargets(ctx context.Context) ([]string, error) {
	if len(b.cfg.Targets) > 0 {
		return b.cfg.Targets, nil
	}

	args := []string{"targets"}
	if b.cfg.Type != "" && b.cfg.Type != "all" {
		args = append(args, "--type", b.cfg.Type)
	}

	_, output, err := runStreamed(ctx, b.cfg.ProjectDir, nil, b.cfg.LogWriter, buckBinary, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list buck targets: %w", err)
	}

	var targets []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			targets = append(targets, line)
		}
	}
	log.Info().Msg(formatBuckTargetsLine(targets))
	return targets, nil
}

// formatBuckTargetsLine renders the resolved target list the way spec
// §8 scenario 6 expects to find it in the log: comma-space-separated,
// matching Buck's own `buckw targets` banner style.
func formatBuckTargetsLine(targets []string) string {
	return fmt.Sprintf("* Buck targets: [%s]", strings.Join(targets, ", "))
}

func (b *BuckInvoker) Run(ctx context.Context, inv Invocation) (Result, error) {
	if b.targets == nil {
		targets, err := b.resolveTargets(ctx)
		if err != nil {
			return Result{Failed: true, Err: err}, err
		}
		b.targets = targets
	}

	args := append([]string{"build"}, b.targets...)
	duration, _, err := runStreamed(ctx, b.cfg.ProjectDir, nil, b.cfg.LogWriter, buckBinary, args...)
	if err != nil {
		return Result{Duration: duration, Failed: true, Err: err}, err
	}
	return Result{Duration: duration}, nil
}

func (b *BuckInvoker) Shutdown(ctx context.Context) error { return nil }

// Targets exposes the resolved target list, primarily for logging
// (spec §8 scenario 6: `* Buck targets: [...]`).
func (b *BuckInvoker) Targets() []string { return b.targets }
