package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/progress"
	"github.com/meigma/progress/metrics"
)

func TestCollectorObserve(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	tracker := c.Observe("pull")
	r := progress.Must(progress.NewReport("pull", 100, 40, progress.UnitsBytes, nil))
	tracker.Report(r)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"progress_completed_units",
		"progress_expected_total_units",
		"progress_complete",
	}, names)

	count, err := promtestutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	tracker.Report(r.WithCompleted(100))
	count, err = promtestutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "series are overwritten, not multiplied")
}

func TestCollectorNamespaceAndForget(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg, metrics.WithNamespace("sync"))
	require.NoError(t, err)

	c.Observe("op").Report(progress.Must(progress.New("op", 10)))
	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, f := range families {
		assert.Contains(t, f.GetName(), "sync_")
	}

	c.Forget("op")
	count, err := promtestutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCollectorDoubleRegister(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := metrics.NewCollector(reg)
	require.NoError(t, err)
	_, err = metrics.NewCollector(reg)
	require.Error(t, err, "the registerer rejects duplicate families")
}
