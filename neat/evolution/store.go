package evolution

import (
	"context"

	"github.com/baldhumanity/ffneat/neat"
)

// SnapshotStore receives the population state after every generation.
// Implementations live in package storage.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, runID string, generation int, snapshot []byte) error
	SaveGenome(ctx context.Context, runID, name string, g *neat.Genome) error
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
}

// SnapshotSource returns the most recent snapshot written for a run.
type SnapshotSource interface {
	LatestSnapshot(ctx context.Context, runID string) (generation int, snapshot []byte, ok bool, err error)
}
