package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnLabel_SingleExecutionTotal(t *testing.T) {
	s := &Scenario{Name: "default", BuildTool: Gradle}
	e := NewExecution(s, "3.1", 1, 1)

	assert.Equal(t, "3.1", e.ColumnLabel(1))
}

func TestColumnLabel_DefaultScenarioMultipleVersions(t *testing.T) {
	s := &Scenario{Name: "default", BuildTool: Gradle}
	e := NewExecution(s, "3.1", 2, 3)

	assert.Equal(t, "default 3.1", e.ColumnLabel(1))
}

func TestColumnLabel_NamedScenarioFromFile(t *testing.T) {
	s := &Scenario{Name: "assemble", BuildTool: Gradle}
	e := NewExecution(s, "3.0", 1, 3)

	assert.Equal(t, "assemble 3.0", e.ColumnLabel(2))
}

func TestColumnLabel_NamedSingleVersionScenario(t *testing.T) {
	s := &Scenario{Name: "help", BuildTool: Gradle, RunUsing: NoDaemon}
	e := NewExecution(s, "3.1", 3, 3)

	assert.Equal(t, "help 3.1", e.ColumnLabel(2))
}

func TestColumnLabel_BuckScenarioHasNoVersionSuffix(t *testing.T) {
	s := &Scenario{Name: "native", BuildTool: Buck}
	e := NewExecution(s, "", 1, 1)

	assert.Equal(t, "native", e.ColumnLabel(1))
}

func TestScenario_Validate_MutuallyExclusiveBuckSelectors(t *testing.T) {
	s := &Scenario{
		Name: "android",
		Buck: &BuckSpec{Targets: []string{"//target:a"}, Type: "all"},
	}

	assert.Error(t, s.Validate())
}

func TestScenario_EffectiveRunUsing_DefaultsToolAPI(t *testing.T) {
	s := &Scenario{Name: "assemble"}
	assert.Equal(t, ToolAPI, s.EffectiveRunUsing())

	s.RunUsing = NoDaemon
	assert.Equal(t, NoDaemon, s.EffectiveRunUsing())
}
