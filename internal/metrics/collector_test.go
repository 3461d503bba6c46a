package metrics

import (
	"bytes"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	collector := NewCollector()

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.Registry())
	assert.NotNil(t, collector.invocationsTotal)
	assert.NotNil(t, collector.invocationDuration)
	assert.NotNil(t, collector.scenariosFailed)
}

func TestCollector_RecordInvocation(t *testing.T) {
	collector := NewCollector()

	collector.RecordInvocation("assemble", "measured", true, 30*time.Second.Seconds())

	successCount := testutil.ToFloat64(collector.invocationsTotal.WithLabelValues("assemble", "measured", "success"))
	failedCount := testutil.ToFloat64(collector.invocationsTotal.WithLabelValues("assemble", "measured", "failed"))
	assert.Equal(t, float64(1), successCount)
	assert.Equal(t, float64(0), failedCount)

	collector.RecordInvocation("assemble", "measured", false, 10)

	successCount = testutil.ToFloat64(collector.invocationsTotal.WithLabelValues("assemble", "measured", "success"))
	failedCount = testutil.ToFloat64(collector.invocationsTotal.WithLabelValues("assemble", "measured", "failed"))
	assert.Equal(t, float64(1), successCount)
	assert.Equal(t, float64(1), failedCount)
}

func TestCollector_RecordInvocation_FailedInvocationsDontObserveDuration(t *testing.T) {
	collector := NewCollector()

	collector.RecordInvocation("assemble", "warmup", false, 999)

	gathered, err := collector.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range gathered {
		if mf.GetName() != "buildbench_invocation_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			assert.Equal(t, uint64(0), m.GetHistogram().GetSampleCount())
		}
	}
}

func TestCollector_RecordScenarioFailure(t *testing.T) {
	collector := NewCollector()

	assert.Equal(t, float64(0), testutil.ToFloat64(collector.scenariosFailed))
	collector.RecordScenarioFailure()
	collector.RecordScenarioFailure()
	assert.Equal(t, float64(2), testutil.ToFloat64(collector.scenariosFailed))
}

func TestCollector_RegistryIsolation(t *testing.T) {
	collector1 := NewCollector()
	collector2 := NewCollector()

	assert.NotSame(t, collector1.Registry(), collector2.Registry())

	collector1.RecordScenarioFailure()

	assert.Equal(t, float64(1), testutil.ToFloat64(collector1.scenariosFailed))
	assert.Equal(t, float64(0), testutil.ToFloat64(collector2.scenariosFailed))
}

func TestCollector_Dump(t *testing.T) {
	collector := NewCollector()
	collector.RecordInvocation("assemble", "measured", true, 2.5)

	var buf bytes.Buffer
	require.NoError(t, collector.Dump(&buf))

	assert.Contains(t, buf.String(), "buildbench_invocations_total")
	assert.Contains(t, buf.String(), "buildbench_invocation_duration_seconds")
}

func TestGlobalCollectorFunctions(t *testing.T) {
	// Calling before InitGlobal must not panic.
	RecordInvocation("assemble", "measured", true, 1)
	RecordScenarioFailure()

	InitGlobal()
	assert.NotNil(t, DefaultCollector)

	RecordInvocation("assemble", "measured", true, 5)
	value := testutil.ToFloat64(DefaultCollector.invocationsTotal.WithLabelValues("assemble", "measured", "success"))
	assert.GreaterOrEqual(t, value, float64(1))
}
