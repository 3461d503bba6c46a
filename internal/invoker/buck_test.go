package invoker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeBinary drops an executable shell script named name into a
// fresh directory, puts that directory first on the test's PATH, and
// returns it, so code under test that shells out to name (via PATH, or
// as ./name with the returned directory as its working directory)
// actually runs our script instead of requiring the real tool to be
// installed.
func writeFakeBinary(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binary harness is posix-shell only")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return dir
}

func TestBuckInvoker_UsesExplicitTargets(t *testing.T) {
	inv := NewBuckInvoker(&BuckConfig{
		ProjectDir: t.TempDir(),
		Targets:    []string{"//app:app_release"},
	})

	targets, err := inv.resolveTargets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"//app:app_release"}, targets)
}

func TestBuckInvoker_ResolvesTargetsByType(t *testing.T) {
	writeFakeBinary(t, "buckw", `echo "//app:app_release"
echo "//app:app_debug"
`)

	inv := NewBuckInvoker(&BuckConfig{
		ProjectDir: t.TempDir(),
		Type:       "android_binary",
	})

	targets, err := inv.resolveTargets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"//app:app_release", "//app:app_debug"}, targets)
}

func TestBuckInvoker_ProbeResolvesAndCachesTargets(t *testing.T) {
	writeFakeBinary(t, "buckw", `echo "//app:app_release"
`)

	inv := NewBuckInvoker(&BuckConfig{
		ProjectDir: t.TempDir(),
		Type:       "android_binary",
	})

	_, err := inv.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"//app:app_release"}, inv.Targets())
}

func TestBuckInvoker_RunBuildsResolvedTargets(t *testing.T) {
	writeFakeBinary(t, "buckw", `if [ "$1" = "build" ]; then exit 0; fi
echo "//app:app_release"
`)

	inv := NewBuckInvoker(&BuckConfig{
		ProjectDir: t.TempDir(),
		Targets:    []string{"//app:app_release"},
	})

	result, err := inv.Run(context.Background(), Invocation{Label: "measured-1"})
	require.NoError(t, err)
	assert.False(t, result.Failed)
}

func TestBuckInvoker_RunSurfacesFailure(t *testing.T) {
	writeFakeBinary(t, "buckw", `echo "BUILD FAILED" 1>&2
exit 1
`)

	inv := NewBuckInvoker(&BuckConfig{
		ProjectDir: t.TempDir(),
		Targets:    []string{"//app:app_release"},
	})

	result, err := inv.Run(context.Background(), Invocation{Label: "measured-1"})
	require.Error(t, err)
	assert.True(t, result.Failed)
}
