package invoker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMavenInvoker_RequiresMavenHome(t *testing.T) {
	t.Setenv("MAVEN_HOME", "")

	_, err := NewMavenInvoker(&MavenConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAVEN_HOME")
}

func TestNewMavenInvoker_SucceedsWhenMavenHomeSet(t *testing.T) {
	t.Setenv("MAVEN_HOME", "/opt/maven")

	inv, err := NewMavenInvoker(&MavenConfig{ProjectDir: t.TempDir(), Targets: []string{"package"}})
	require.NoError(t, err)
	assert.NotNil(t, inv)
}

func TestMavenInvoker_RunBuildsConfiguredTargets(t *testing.T) {
	t.Setenv("MAVEN_HOME", "/opt/maven")
	writeFakeBinary(t, "mvn", `exit 0
`)

	inv, err := NewMavenInvoker(&MavenConfig{ProjectDir: t.TempDir(), Targets: []string{"package"}})
	require.NoError(t, err)

	result, err := inv.Run(context.Background(), Invocation{Label: "measured-1"})
	require.NoError(t, err)
	assert.False(t, result.Failed)
}

func TestMavenInvoker_RunSurfacesFailure(t *testing.T) {
	t.Setenv("MAVEN_HOME", "/opt/maven")
	writeFakeBinary(t, "mvn", `echo "BUILD FAILURE" 1>&2
exit 1
`)

	inv, err := NewMavenInvoker(&MavenConfig{ProjectDir: t.TempDir(), Targets: []string{"package"}})
	require.NoError(t, err)

	result, err := inv.Run(context.Background(), Invocation{Label: "measured-1"})
	require.Error(t, err)
	assert.True(t, result.Failed)
}

func TestMavenInvoker_ShutdownIsNoOp(t *testing.T) {
	t.Setenv("MAVEN_HOME", "/opt/maven")
	inv, err := NewMavenInvoker(&MavenConfig{})
	require.NoError(t, err)
	assert.NoError(t, inv.Shutdown(context.Background()))
}
