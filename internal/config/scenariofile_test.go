package config

import (
	"testing"

	"github.com/glincker/buildbench/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioFile_BasicGradleScenario(t *testing.T) {
	raw := []byte(`
assemble:
  versions: ["3.0", "3.1"]
  tasks: assemble
help:
  versions: "3.1"
  tasks: [help]
  run-using: no-daemon
`)

	doc, err := ParseScenarioFile("scenarios.conf", raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"assemble", "help"}, doc.Names())

	assemble, ok := doc.Get("assemble")
	require.True(t, ok)
	assert.Equal(t, []string{"3.0", "3.1"}, assemble.Versions)
	assert.Equal(t, []string{"assemble"}, assemble.Tasks)
	assert.Equal(t, scenario.ToolAPI, assemble.EffectiveRunUsing())

	help, ok := doc.Get("help")
	require.True(t, ok)
	assert.Equal(t, []string{"3.1"}, help.Versions)
	assert.Equal(t, scenario.NoDaemon, help.RunUsing)
}

func TestParseScenarioFile_UnrecognizedKey(t *testing.T) {
	raw := []byte(`
assemble:
  tasks: assemble
  bogus-key: true
`)

	_, err := ParseScenarioFile("scenarios.conf", raw)
	require.Error(t, err)
	assert.Equal(t, "Unrecognized key 'assemble.bogus-key' defined in scenario file scenarios.conf", err.Error())
}

func TestDocument_Resolve_UnknownScenario(t *testing.T) {
	raw := []byte(`
assemble:
  tasks: assemble
`)
	doc, err := ParseScenarioFile("scenarios.conf", raw)
	require.NoError(t, err)

	_, err = doc.Resolve([]string{"nope"})
	require.Error(t, err)
	assert.Equal(t, "Unknown scenario 'nope' requested. Available scenarios are: [assemble]", err.Error())
}

func TestDocument_Resolve_AllWhenEmpty(t *testing.T) {
	raw := []byte(`
zeta:
  tasks: z
alpha:
  tasks: a
`)
	doc, err := ParseScenarioFile("scenarios.conf", raw)
	require.NoError(t, err)

	all, err := doc.Resolve(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[1].Name)
}

func TestParseScenarioFile_MutuallyExclusiveMutatorKeys(t *testing.T) {
	raw := []byte(`
assemble:
  tasks: assemble
  apply-abi-change-to: src/Foo.java
  apply-non-abi-change-to: src/Foo.java
`)
	_, err := ParseScenarioFile("scenarios.conf", raw)
	require.Error(t, err)
}

func TestParseScenarioFile_BuckScenario(t *testing.T) {
	raw := []byte(`
android:
  buck:
    type: android_binary
`)
	doc, err := ParseScenarioFile("scenarios.conf", raw)
	require.NoError(t, err)

	android, ok := doc.Get("android")
	require.True(t, ok)
	assert.Equal(t, scenario.Buck, android.BuildTool)
	assert.Equal(t, "android_binary", android.Buck.Type)
}

func TestCLIOptions_Validate(t *testing.T) {
	o := &CLIOptions{}
	err := o.Validate()
	require.Error(t, err)
	assert.Equal(t, "Neither --profile or --benchmark specified.", err.Error())

	o.Benchmark = true
	err = o.Validate()
	require.Error(t, err)
	assert.Equal(t, "No project directory specified.", err.Error())

	o.ProjectDir = "/tmp/project"
	assert.NoError(t, o.Validate())
}
