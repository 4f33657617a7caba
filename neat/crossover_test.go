package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossoverParents returns two genomes sharing the gene 0->2, which is
// disabled in the weaker one. Each parent also has a gene the other lacks.
func crossoverParents(t *testing.T, cfg *Config, tr *Tracker) (fitter, weaker *Genome) {
	t.Helper()
	cfg.Genome.NumHidden = 1
	require.NoError(t, cfg.Validate())

	fitter = newTestGenome(t, cfg, tr)
	weaker = newTestGenome(t, cfg, tr)
	fitter.addEdge(NewEdge(0, 2, 1.0, tr.Innovation(0, 2)))
	fitter.addEdge(NewEdge(1, 2, 0.25, tr.Innovation(1, 2)))
	weaker.addEdge(NewEdge(0, 2, -1.0, tr.Innovation(0, 2)))
	weaker.addEdge(NewEdge(0, 3, 0.5, tr.Innovation(0, 3)))
	weaker.Edge(0, 2).Enabled = false

	fitter.Fitness = 10
	weaker.Fitness = 1
	return fitter, weaker
}

func TestCrossoverInheritsFromFitterParent(t *testing.T) {
	cfg := testConfig(t, 2, 1)
	tr := NewTracker(11, FirstFreeNodeID(&cfg.Genome))
	fitter, weaker := crossoverParents(t, cfg, tr)

	for i := 0; i < 50; i++ {
		for _, child := range []*Genome{fitter.Crossover(weaker, tr), weaker.Crossover(fitter, tr)} {
			assert.NotEqual(t, fitter.ID, child.ID)
			assert.NotEqual(t, weaker.ID, child.ID)
			assert.Zero(t, child.Fitness)
			require.Len(t, child.Edges, 2)

			only := child.Edge(1, 2)
			require.NotNil(t, only)
			assert.Equal(t, *fitter.Edge(1, 2), *only)
			assert.Nil(t, child.Edge(0, 3))

			shared := child.Edge(0, 2)
			require.NotNil(t, shared)
			assert.Contains(t, []float64{1.0, -1.0}, shared.Weight)
			assert.Equal(t, fitter.Edge(0, 2).Innovation, shared.Innovation)

			assert.Len(t, child.Nodes, len(fitter.Nodes))
			assert.True(t, child.IsAcyclic())
		}
	}
}

func TestCrossoverReenableProbability(t *testing.T) {
	for _, tc := range []struct {
		name    string
		prob    float64
		enabled bool
	}{
		{"never", 0, false},
		{"always", 1, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, 2, 1)
			cfg.Genome.ReenableProb = tc.prob
			tr := NewTracker(4, FirstFreeNodeID(&cfg.Genome))
			fitter, weaker := crossoverParents(t, cfg, tr)

			for i := 0; i < 20; i++ {
				child := fitter.Crossover(weaker, tr)
				assert.Equal(t, tc.enabled, child.Edge(0, 2).Enabled)
			}
		})
	}
}

func TestCrossoverDoesNotShareState(t *testing.T) {
	cfg := testConfig(t, 2, 1)
	tr := NewTracker(8, FirstFreeNodeID(&cfg.Genome))
	fitter, weaker := crossoverParents(t, cfg, tr)

	child := fitter.Crossover(weaker, tr)
	child.Edge(1, 2).Weight = 99
	child.Nodes[0].Bias = 99

	assert.Equal(t, 0.25, fitter.Edge(1, 2).Weight)
	assert.Zero(t, fitter.Nodes[0].Bias)
	assert.Zero(t, weaker.Nodes[0].Bias)
}
