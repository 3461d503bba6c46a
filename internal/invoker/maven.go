package invoker

import (
	"context"
	"fmt"
	"io"
	"os"
)

const mavenBinary = "mvn"

// MavenConfig configures a Maven-backed invoker.
type MavenConfig struct {
	ProjectDir string
	Targets    []string
	LogWriter  io.Writer
}

// MavenInvoker drives Maven (spec §4.4). Like Buck, it never runs a
// probe or an initial clean build, and profiling it is unsupported.
type MavenInvoker struct {
	cfg *MavenConfig
}

// NewMavenInvoker builds a Maven invoker. MAVEN_HOME must already be
// set in the process environment; buildbench does not locate or
// install a Maven distribution itself.
func NewMavenInvoker(cfg *MavenConfig) (*MavenInvoker, error) {
	if os.Getenv("MAVEN_HOME") == "" {
		return nil, fmt.Errorf("MAVEN_HOME is not set; required to run scenarios using Maven")
	}
	return &MavenInvoker{cfg: cfg}, nil
}

func (m *MavenInvoker) Probe(ctx context.Context) (Environment, error) {
	return Environment{}, nil
}

func (m *MavenInvoker) Run(ctx context.Context, inv Invocation) (Result, error) {
	args := append([]string{}, m.cfg.Targets...)
	duration, _, err := runStreamed(ctx, m.cfg.ProjectDir, nil, m.cfg.LogWriter, mavenBinary, args...)
	if err != nil {
		return Result{Duration: duration, Failed: true, Err: err}, err
	}
	return Result{Duration: duration}, nil
}

func (m *MavenInvoker) Shutdown(ctx context.Context) error { return nil }
