package bench

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestRunSweepProducesOneResultPerCell(t *testing.T) {
	cells := []Cell{
		{Scheme: SchemeCauchyRS, K: 4, M: 2, Loss: 0.1},
		{Scheme: SchemeCauchyRS, K: 4, M: 2, Loss: 0.3},
		{Scheme: SchemeVandeRS, K: 4, M: 2, Loss: 0.1},
		{Scheme: SchemeRLC, K: 4, M: 2, Loss: 0.1},
	}
	metrics := NewMetrics(prometheus.NewRegistry())

	results, err := RunSweep(cells, 20, 32, 1, 4, metrics)
	require.NoError(t, err)
	require.Len(t, results, len(cells))
	for i, r := range results {
		require.Equal(t, cells[i], r.Cell)
		require.Equal(t, 20, r.Runs)
	}
}

func TestCauchyRSCellNeverFailsWithinBudget(t *testing.T) {
	cells := []Cell{{Scheme: SchemeCauchyRS, K: 6, M: 3, Loss: 0.9}}
	results, err := RunSweep(cells, 30, 16, 7, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 30, results[0].Successes, "erasure pattern is budget-capped at m, so crs should always succeed")
}

func TestWriteJSONAndHeatmapDoNotPanic(t *testing.T) {
	results := []Result{
		{Cell: Cell{Scheme: SchemeCauchyRS, K: 4, M: 2, Loss: 0.1}, Runs: 10, Successes: 9},
	}
	b, err := WriteJSON(results)
	require.NoError(t, err)
	require.Contains(t, string(b), "cauchy-rs")

	md := WriteHeatmap(results)
	require.Contains(t, md, "cauchy-rs")
	require.Contains(t, md, "4,2")
}
