package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/baldhumanity/ffneat/neat"
)

type snapshotRecord struct {
	generation int
	payload    []byte
}

// MemoryStore keeps the latest snapshot, named genomes and fitness history
// of each run in memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	snapshots   map[string]snapshotRecord
	genomes     map[string][]byte
	history     map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.snapshots = make(map[string]snapshotRecord)
	s.genomes = make(map[string][]byte)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, runID string, generation int, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	if current, ok := s.snapshots[runID]; ok && current.generation > generation {
		return nil
	}
	s.snapshots[runID] = snapshotRecord{generation: generation, payload: slices.Clone(snapshot)}
	return nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context, runID string) (int, []byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.snapshots[runID]
	if !ok {
		return 0, nil, false, nil
	}
	return record.generation, slices.Clone(record.payload), true, nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, runID, name string, g *neat.Genome) error {
	payload, err := encodeGenome(g)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.genomes[runID+"/"+name] = payload
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, runID, name string, config *neat.GenomeConfig) (*neat.Genome, bool, error) {
	s.mu.RLock()
	payload, ok := s.genomes[runID+"/"+name]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	g, err := decodeGenome(payload, config)
	if err != nil {
		return nil, false, err
	}
	return g, true, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.history[runID] = slices.Clone(history)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	return slices.Clone(history), ok, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
