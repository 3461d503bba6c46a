package profiler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/glincker/buildbench/internal/invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYourKit_AdjustConfigAddsAgentArg(t *testing.T) {
	y := NewYourKit("/opt/yourkit/libyjpagent.so", true, false)
	cfg := &invoker.GradleConfig{}
	y.AdjustConfig(cfg)

	require.Len(t, cfg.GradleArgs, 1)
	assert.Contains(t, cfg.GradleArgs[0], "libyjpagent.so")
	assert.Contains(t, cfg.GradleArgs[0], "sampling")
}

func TestYourKit_FinalizeMovesSnapshots(t *testing.T) {
	dir := t.TempDir()
	prev, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(prev)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.snapshot"), []byte("data"), 0o644))

	out := filepath.Join(dir, "out")
	y := NewYourKit("", false, false)
	require.NoError(t, y.Finalize(context.Background(), out))

	_, err := os.Stat(filepath.Join(out, "session.snapshot"))
	assert.NoError(t, err)
}

func TestJProfiler_AdjustConfigIncludesExtraArgs(t *testing.T) {
	j := NewJProfiler("/opt/jprofiler/libjprofilerti.so", []string{"port=8849"})
	cfg := &invoker.GradleConfig{}
	j.AdjustConfig(cfg)

	require.Len(t, cfg.GradleArgs, 1)
	assert.Contains(t, cfg.GradleArgs[0], "port=8849")
}

func TestChromeTrace_FinalizeWritesHTML(t *testing.T) {
	c := NewChromeTrace()
	ctx := context.Background()

	require.NoError(t, c.BeforeMeasured(ctx, 0))
	require.NoError(t, c.AfterMeasured(ctx, 0))

	out := t.TempDir()
	require.NoError(t, c.Finalize(ctx, out))

	contents, err := os.ReadFile(filepath.Join(out, "chrome-trace.html"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "measured")
}

func TestBuildScan_DefaultVersion(t *testing.T) {
	b := NewBuildScan("")
	assert.Equal(t, DefaultBuildScanVersion, b.Version)

	b2 := NewBuildScan("1.7")
	assert.Equal(t, "1.7", b2.Version)
}

func TestBuildScan_AdjustConfigWritesInitScript(t *testing.T) {
	home := t.TempDir()
	cfg := &invoker.GradleConfig{GradleUserHome: home}

	b := NewBuildScan("1.6")
	b.AdjustConfig(cfg)

	require.Len(t, cfg.GradleArgs, 2)
	assert.Equal(t, "--init-script", cfg.GradleArgs[0])

	contents, err := os.ReadFile(cfg.GradleArgs[1])
	require.NoError(t, err)
	assert.Contains(t, string(contents), "build-scan-plugin:1.6")
}

func TestBuildScan_Published(t *testing.T) {
	assert.True(t, Published("... Publishing build information… done\n"))
	assert.False(t, Published("BUILD SUCCESSFUL\n"))
}

func TestJFR_BeforeMeasuredRequiresPID(t *testing.T) {
	j := NewJFR()
	err := j.BeforeMeasured(context.Background(), 0)
	require.Error(t, err)
}

func TestJFR_Name(t *testing.T) {
	assert.Equal(t, "jfr", NewJFR().Name())
}

func TestRequiresDaemon(t *testing.T) {
	assert.True(t, RequiresDaemon(NewJFR()))
	assert.False(t, RequiresDaemon(NewChromeTrace()))
}
