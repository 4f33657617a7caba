package viz

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/ffneat/neat"
	"github.com/baldhumanity/ffneat/neat/evolution"
	"github.com/baldhumanity/ffneat/neat/nn"
)

// splitGenome returns 0->3->2 plus a disabled 1->2 and an unused hidden node 4.
func splitGenome(t *testing.T) *neat.Genome {
	t.Helper()
	cfg := neat.DefaultConfig(2, 1)
	cfg.Genome.NumHidden = 2
	require.NoError(t, cfg.Validate())
	g, err := neat.NewDefaultGenome(1, &cfg.Genome)
	require.NoError(t, err)

	g.Edges = append(g.Edges,
		neat.NewEdge(0, 3, 1.5, 1),
		neat.NewEdge(3, 2, -0.5, 2),
		neat.NewEdge(1, 2, 2, 3),
	)
	g.Edges[2].Enabled = false
	return g
}

func TestWriteGenomeDOT(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGenomeDOT(&buf, splitGenome(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "strict digraph genome_1 {"), out)
	assert.Contains(t, out, "rankdir=LR")
	assert.Contains(t, out, "0 -> 3")
	assert.Contains(t, out, "3 -> 2")
	assert.Contains(t, out, "1 -> 2")
	assert.Contains(t, out, "dashed")
	assert.Contains(t, out, "red")
	assert.Contains(t, out, "1.50")
	assert.Contains(t, out, "-0.50")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestWriteNetworkDOT(t *testing.T) {
	net, err := nn.Build(splitGenome(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteNetworkDOT(&buf, net))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "strict digraph network_1 {"), out)
	assert.Contains(t, out, "0 -> 3")
	assert.Contains(t, out, "3 -> 2")
	assert.NotContains(t, out, "1 -> 2", "disabled edges are not part of the network")
	assert.Contains(t, out, "dotted", "hidden node 4 has no layer")
}

func TestPlotFitness(t *testing.T) {
	history := []evolution.GenerationRecord{
		{Generation: 1, Fitnesses: []float64{0.1, 0.2, 0.4}, ChampionFitness: 0.4, GenerationChampionFitness: 0.4},
		{Generation: 2, Fitnesses: []float64{0.3, 0.2, 0.3}, ChampionFitness: 0.4, GenerationChampionFitness: 0.3},
		{Generation: 3, Fitnesses: []float64{0.5, 0.6, 0.9}, ChampionFitness: 0.9, GenerationChampionFitness: 0.9},
	}

	path := filepath.Join(t.TempDir(), "fitness.png")
	require.NoError(t, PlotFitness(history, "test run", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, PlotFitness(nil, "empty", filepath.Join(t.TempDir(), "empty.png")))
}
