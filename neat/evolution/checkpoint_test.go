package evolution

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/ffneat/neat"
)

func evolved(t *testing.T, cfg *neat.Config, generations int) *Population {
	t.Helper()
	p, err := NewPopulation(cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), outputOnOnes, generations, nil)
	require.NoError(t, err)
	return p
}

// assertSameGenes compares genes by value. gob does not tell an empty slice
// from a nil one.
func assertSameGenes(t *testing.T, want, got *neat.Genome) {
	t.Helper()
	require.Len(t, got.Nodes, len(want.Nodes))
	for i, n := range want.Nodes {
		assert.Equal(t, *n, *got.Nodes[i])
	}
	require.Len(t, got.Edges, len(want.Edges))
	for i, e := range want.Edges {
		assert.Equal(t, *e, *got.Edges[i])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	p := evolved(t, cfg, 3)

	var buf bytes.Buffer
	require.NoError(t, p.WriteSnapshot(&buf))
	restored, err := ReadSnapshot(&buf, cfg)
	require.NoError(t, err)

	assert.Equal(t, Ready, restored.State())
	assert.Equal(t, p.RunID, restored.RunID)
	assert.Equal(t, p.Generation, restored.Generation)
	assert.Equal(t, p.ChampionSpeciesID, restored.ChampionSpeciesID)
	assert.Equal(t, p.History, restored.History)
	assert.Equal(t, p.Champion.Fitness, restored.Champion.Fitness)
	assertSameGenes(t, p.Champion, restored.Champion)
	assert.Equal(t, p.Tracker.NextGenomeID, restored.Tracker.NextGenomeID)
	assert.Equal(t, p.Tracker.NextInnovation, restored.Tracker.NextInnovation)
	assert.Equal(t, p.Tracker.Innovations, restored.Tracker.Innovations)
	require.Len(t, restored.Genomes, len(p.Genomes))
	for i, g := range p.Genomes {
		assert.Equal(t, g.ID, restored.Genomes[i].ID)
		assertSameGenes(t, g, restored.Genomes[i])
		assert.Same(t, &cfg.Genome, restored.Genomes[i].Config())
	}
	require.Len(t, restored.Species, len(p.Species))
	for i, s := range p.Species {
		assert.Equal(t, s.ID, restored.Species[i].ID)
		assert.Equal(t, s.Age, restored.Species[i].Age)
		assert.Equal(t, s.BestFitness, restored.Species[i].BestFitness)
		assert.Equal(t, s.Representative.ID, restored.Species[i].Representative.ID)
		assert.Equal(t, s.Created, restored.Species[i].Created)
		assert.Equal(t, s.Fitness, restored.Species[i].Fitness)
		assert.Equal(t, s.LastImproved, restored.Species[i].LastImproved)
		if len(s.FitnessHistory) == 0 {
			assert.Empty(t, restored.Species[i].FitnessHistory)
		} else {
			assert.Equal(t, s.FitnessHistory, restored.Species[i].FitnessHistory)
		}
	}
	requireConsistent(t, restored)

	// The restored population keeps evolving.
	_, err = restored.Run(context.Background(), outputOnOnes, restored.Generation+1, nil)
	require.NoError(t, err)
	requireConsistent(t, restored)
	assert.Len(t, restored.History, 5)
}

func TestCheckpointFile(t *testing.T) {
	cfg := testConfig(t)
	p := evolved(t, cfg, 2)

	path := filepath.Join(t.TempDir(), "checkpoint.gz")
	require.NoError(t, p.SaveCheckpoint(path))
	restored, err := LoadCheckpoint(path, cfg)
	require.NoError(t, err)
	assert.Equal(t, p.Generation, restored.Generation)
	assert.Equal(t, p.Size(), restored.Size())

	_, err = LoadCheckpoint(filepath.Join(t.TempDir(), "missing.gz"), cfg)
	assert.Error(t, err)
}

func TestReadSnapshotRejectsShapeMismatch(t *testing.T) {
	p := evolved(t, testConfig(t), 1)
	var buf bytes.Buffer
	require.NoError(t, p.WriteSnapshot(&buf))

	other := neat.DefaultConfig(3, 1)
	other.Neat.Output = "none"
	_, err := ReadSnapshot(&buf, other)
	require.Error(t, err)
	assert.True(t, errors.Is(err, neat.ErrConfiguration))
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	_, err := ReadSnapshot(bytes.NewReader([]byte("not a snapshot")), testConfig(t))
	assert.Error(t, err)
}

// recordingStore keeps every snapshot in memory.
type recordingStore struct {
	mu        sync.Mutex
	snapshots map[int][]byte
	genomes   map[string]*neat.Genome
	history   []float64
}

func newRecordingStore() *recordingStore {
	return &recordingStore{snapshots: make(map[int][]byte), genomes: make(map[string]*neat.Genome)}
}

func (s *recordingStore) SaveSnapshot(_ context.Context, _ string, generation int, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[generation] = snapshot
	return nil
}

func (s *recordingStore) SaveGenome(_ context.Context, _ string, name string, g *neat.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genomes[name] = g
	return nil
}

func (s *recordingStore) SaveFitnessHistory(_ context.Context, _ string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = history
	return nil
}

func (s *recordingStore) LatestSnapshot(_ context.Context, _ string) (int, []byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := 0
	for gen := range s.snapshots {
		latest = max(latest, gen)
	}
	if latest == 0 {
		return 0, nil, false, nil
	}
	return latest, s.snapshots[latest], true, nil
}

func TestStoreAndResume(t *testing.T) {
	cfg := testConfig(t)
	p, err := NewPopulation(cfg)
	require.NoError(t, err)
	store := newRecordingStore()
	p.Store = store

	_, err = p.Run(context.Background(), outputOnOnes, 3, nil)
	require.NoError(t, err)

	assert.Len(t, store.snapshots, 3)
	assert.Contains(t, store.snapshots, 4)
	assert.Same(t, p.Champion, store.genomes["champion"])
	assert.Equal(t, []float64{p.History[0].ChampionFitness, p.History[1].ChampionFitness, p.History[2].ChampionFitness}, store.history)

	resumed, err := Resume(context.Background(), store, p.RunID, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, resumed.Generation)
	assert.Equal(t, p.RunID, resumed.RunID)
	requireConsistent(t, resumed)

	_, err = Resume(context.Background(), newRecordingStore(), p.RunID, cfg)
	assert.True(t, errors.Is(err, neat.ErrConfiguration))
}
