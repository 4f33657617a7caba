package evolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/ffneat/neat"
)

func stagnationSpecies(t *testing.T, cfg *neat.Config, id, age, lastImproved int, fitness float64) *neat.Species {
	t.Helper()
	g, err := neat.NewDefaultGenome(id, &cfg.Genome)
	require.NoError(t, err)
	s := neat.NewSpecies(id, 1, g, cfg)
	s.Age = age
	s.LastImproved = lastImproved
	s.Fitness = fitness
	return s
}

func TestStagnatedSpecies(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stagnation.MaxStagnation = 2

	old := stagnationSpecies(t, cfg, 1, 5, 1, 2)
	fresh := stagnationSpecies(t, cfg, 2, 5, 4, 1)
	species := []*neat.Species{old, fresh}

	assert.Equal(t, []*neat.Species{old}, stagnatedSpecies(species, 0))
	assert.Empty(t, stagnatedSpecies(species, old.ID), "the champion's species is protected")
}

func TestStagnatedSpeciesKeepsFittest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stagnation.MaxStagnation = 2

	a := stagnationSpecies(t, cfg, 1, 9, 1, 1)
	b := stagnationSpecies(t, cfg, 2, 9, 1, 3)
	c := stagnationSpecies(t, cfg, 3, 9, 1, 3)

	assert.Equal(t, []*neat.Species{a, c}, stagnatedSpecies([]*neat.Species{a, b, c}, 0))
	assert.Empty(t, stagnatedSpecies([]*neat.Species{b}, 0))
}
