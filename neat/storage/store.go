// Package storage keeps population snapshots, named genomes and fitness
// histories per run.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/baldhumanity/ffneat/neat"
	"github.com/baldhumanity/ffneat/neat/evolution"
)

// Store is the full storage contract. Both implementations satisfy
// evolution.SnapshotStore and evolution.SnapshotSource.
type Store interface {
	evolution.SnapshotStore
	evolution.SnapshotSource

	Init(ctx context.Context) error
	GetGenome(ctx context.Context, runID, name string, config *neat.GenomeConfig) (*neat.Genome, bool, error)
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	Close() error
}

// NewStore opens a store by backend name: "memory" (or empty) or "sqlite".
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func encodeGenome(g *neat.Genome) ([]byte, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encode genome %d: %w", g.ID, err)
	}
	return payload, nil
}

func decodeGenome(payload []byte, config *neat.GenomeConfig) (*neat.Genome, error) {
	g := &neat.Genome{}
	if err := json.Unmarshal(payload, g); err != nil {
		return nil, err
	}
	g.Attach(config)
	return g, nil
}
