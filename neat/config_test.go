package neat

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigINI(t *testing.T) {
	path := writeConfig(t, "test.ini", `
[NEAT]
pop_size        = 20
num_generations = 40
fitness_goal    = 3.5
seed            = 7
output          = none

[DefaultGenome]
num_inputs        = 3
num_outputs       = 2
output_activation = tanh
hidden_activation = lelu
add_node_weight   = 0.4

[DefaultStagnation]
species_fitness_func = mean
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Neat.PopSize)
	assert.Equal(t, 40, cfg.Neat.NumGenerations)
	assert.Equal(t, int64(7), cfg.Neat.Seed)
	require.NotNil(t, cfg.Neat.FitnessGoal)
	assert.Equal(t, 3.5, *cfg.Neat.FitnessGoal)
	assert.Equal(t, 3, cfg.Genome.NumInputs)
	assert.Equal(t, 2, cfg.Genome.NumOutputs)
	assert.Equal(t, Tanh, cfg.Genome.OutputActivation)
	assert.Equal(t, LeakyReLU, cfg.Genome.HiddenActivation)
	assert.Equal(t, 0.4, cfg.Genome.AddNodeWeight)
	assert.Equal(t, "mean", cfg.Stagnation.SpeciesFitnessFunc)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 15, cfg.Stagnation.MaxStagnation)
	assert.Equal(t, 3.0, cfg.SpeciesSet.CompatibilityThreshold)
	assert.Equal(t, 0.75, cfg.Reproduction.CrossoverRate)
}

func TestLoadConfigINIWithoutGoal(t *testing.T) {
	path := writeConfig(t, "test.ini", `
[NEAT]
pop_size = 10

[DefaultGenome]
num_inputs  = 1
num_outputs = 1
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Neat.FitnessGoal)
	assert.Zero(t, cfg.Neat.NumGenerations)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "test.yaml", `
neat:
  pop_size: 30
  fitness_goal: 2
  output: none
genome:
  num_inputs: 4
  num_outputs: 1
  max_hidden: 3
  hidden_aggregation: max
reproduction:
  survival_threshold: 0.3
stagnation:
  max_stagnation: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Neat.PopSize)
	require.NotNil(t, cfg.Neat.FitnessGoal)
	assert.Equal(t, 2.0, *cfg.Neat.FitnessGoal)
	assert.Equal(t, 4, cfg.Genome.NumInputs)
	assert.Equal(t, 3, cfg.Genome.MaxHidden)
	assert.Equal(t, Max, cfg.Genome.HiddenAggregation)
	assert.Equal(t, 0.3, cfg.Reproduction.SurvivalThreshold)
	assert.Equal(t, 5, cfg.Stagnation.MaxStagnation)
	assert.Equal(t, Sigmoid, cfg.Genome.OutputActivation)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"hidden above cap", "[NEAT]\npop_size = 5\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\nnum_hidden = 4\nmax_hidden = 2\n"},
		{"unknown activation", "[NEAT]\npop_size = 5\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\noutput_activation = wobble\n"},
		{"unknown output", "[NEAT]\npop_size = 5\noutput = printer\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n"},
		{"no inputs", "[NEAT]\npop_size = 5\n[DefaultGenome]\nnum_outputs = 1\n"},
		{"zero population", "[NEAT]\npop_size = 0\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n"},
		{"bad goal", "[NEAT]\npop_size = 5\nfitness_goal = high\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n"},
		{"bad fitness func", "[NEAT]\npop_size = 5\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n[DefaultStagnation]\nspecies_fitness_func = mode\n"},
		{"no mutation weights", "[NEAT]\npop_size = 5\n[DefaultGenome]\nnum_inputs = 1\nnum_outputs = 1\n" +
			"weight_perturb_weight = 0\nweight_reset_weight = 0\nadd_edge_weight = 0\nremove_edge_weight = 0\n" +
			"add_node_weight = 0\nremove_node_weight = 0\ntoggle_edge_weight = 0\ntoggle_node_weight = 0\nbias_perturb_weight = 0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, "bad.ini", tc.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.ini"))
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestOutputWriter(t *testing.T) {
	for name, want := range map[string]io.Writer{
		"stdout": os.Stdout,
		"STDERR": os.Stderr,
		"none":   io.Discard,
		"":       io.Discard,
	} {
		nc := NeatConfig{Output: name}
		w, err := nc.OutputWriter()
		require.NoError(t, err)
		assert.Equal(t, want, w, name)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig(2, 1)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Sigmoid, cfg.Genome.OutputActivation)
	assert.Equal(t, Tanh, cfg.Genome.HiddenActivation)
	assert.Equal(t, Sum, cfg.Genome.HiddenAggregation)
	assert.Nil(t, cfg.Neat.FitnessGoal)

	assert.True(t, errors.Is(DefaultConfig(0, 1).Validate(), ErrConfiguration))
}
