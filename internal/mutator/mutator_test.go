package mutator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glincker/buildbench/internal/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestAcquire_NilSpecIsNoop(t *testing.T) {
	m, release, err := Acquire(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.NoError(t, release())
}

func TestMutator_AndroidResource_RoundTrip(t *testing.T) {
	original := "<resources>\n    <string name=\"app_name\">Demo</string>\n</resources>\n"
	path := writeTemp(t, "strings.xml", original)

	m, release, err := Acquire(&scenario.MutatorSpec{Kind: scenario.AndroidResource, TargetFile: path})
	require.NoError(t, err)
	defer release()

	for i := 1; i <= 3; i++ {
		require.NoError(t, m.Apply(i))
	}

	require.NoError(t, release())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestMutator_DistinctInvocationsProduceDistinctContent(t *testing.T) {
	original := "<resources>\n</resources>\n"
	path := writeTemp(t, "strings.xml", original)

	m, release, err := Acquire(&scenario.MutatorSpec{Kind: scenario.AndroidResource, TargetFile: path})
	require.NoError(t, err)
	defer release()

	require.NoError(t, m.Apply(1))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, m.Apply(2))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second))
}

func TestMutator_AbortThenRevert_RestoresOriginal(t *testing.T) {
	original := "<resources>\n</resources>\n"
	path := writeTemp(t, "strings.xml", original)

	m, release, err := Acquire(&scenario.MutatorSpec{Kind: scenario.AndroidResource, TargetFile: path})
	require.NoError(t, err)

	require.NoError(t, m.Apply(1))
	// Simulate abort between invocations: revert still must restore.
	require.NoError(t, release())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestMutator_ABIJava_AppendsMethod(t *testing.T) {
	original := "public class Foo {\n    void bar() {}\n}\n"
	path := writeTemp(t, "Foo.java", original)

	m, release, err := Acquire(&scenario.MutatorSpec{Kind: scenario.ABIJava, TargetFile: path})
	require.NoError(t, err)
	defer release()

	require.NoError(t, m.Apply(1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mutatorMethod1")
}

func TestMutator_NonABIJava_LeavesSignatureLine(t *testing.T) {
	original := "public class Foo {\n    void bar() {\n    }\n}\n"
	path := writeTemp(t, "Foo.java", original)

	m, release, err := Acquire(&scenario.MutatorSpec{Kind: scenario.NonABIJava, TargetFile: path})
	require.NoError(t, err)
	defer release()

	require.NoError(t, m.Apply(1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "void bar() {")
	assert.Contains(t, string(data), "mutatorVar1")
}

func TestMutator_AndroidResourceValue_ModifiesExistingValue(t *testing.T) {
	original := "<resources>\n    <string name=\"app_name\">Demo</string>\n</resources>\n"
	path := writeTemp(t, "strings.xml", original)

	m, release, err := Acquire(&scenario.MutatorSpec{Kind: scenario.AndroidResourceValue, TargetFile: path})
	require.NoError(t, err)
	defer release()

	require.NoError(t, m.Apply(1))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Demo mutator1")
}
