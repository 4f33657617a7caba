package evolution

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather flattens the registry into name{label} -> value. Histograms report
// their sample count.
func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetValue() + "}"
			}
			switch {
			case m.GetGauge() != nil:
				values[key] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				values[key] = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	p, err := NewPopulation(testConfig(t))
	require.NoError(t, err)
	p.Metrics = m

	_, err = p.Run(context.Background(), outputOnOnes, 2, nil)
	require.NoError(t, err)

	values := gather(t, reg)
	assert.Equal(t, 2.0, values["neat_generation"])
	assert.Equal(t, float64(len(p.Species)), values["neat_species"])
	assert.Equal(t, 20.0, values["neat_genomes_evaluated_total"])
	assert.Equal(t, p.Champion.Fitness, values["neat_best_fitness{champion}"])
	assert.Equal(t, p.GenerationChampion.Fitness, values["neat_best_fitness{generation}"])
	assert.Equal(t, 2.0, values["neat_generation_duration_seconds"])
}

func TestMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.evaluated(3)
		m.removed("stagnated", 1)
		m.generationDone(1, 1, 0, 0, 0)
	})
}
