package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerInnovations(t *testing.T) {
	tr := NewTracker(1, 3)

	a := tr.Innovation(0, 2)
	b := tr.Innovation(1, 2)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, a, tr.Innovation(0, 2))
	assert.NotEqual(t, a, tr.Innovation(2, 0))
}

func TestTrackerIDs(t *testing.T) {
	tr := NewTracker(1, 5)

	assert.Equal(t, 1, tr.GenomeID())
	assert.Equal(t, 2, tr.GenomeID())
	assert.Equal(t, 1, tr.SpeciesID())
	assert.Equal(t, 5, tr.NodeID())
	assert.Equal(t, 6, tr.NodeID())
}

func TestTrackerSplitNode(t *testing.T) {
	tr := NewTracker(1, 3)
	none := func(int) bool { return false }

	id := tr.SplitNode(7, none)
	assert.Equal(t, 3, id)
	assert.Equal(t, id, tr.SplitNode(7, none))
	assert.Equal(t, 4, tr.SplitNode(8, none))

	// A genome that already holds the recorded node gets a fresh id.
	holds := func(n int) bool { return n == 3 }
	assert.Equal(t, 5, tr.SplitNode(7, holds))
	assert.Equal(t, 3, tr.SplitNode(7, none))
}

func TestTrackerSeedIsDeterministic(t *testing.T) {
	a := NewTracker(99, 0)
	b := NewTracker(99, 0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Rand().Float64(), b.Rand().Float64())
	}

	a.Reseed(5)
	b.Reseed(5)
	assert.Equal(t, a.Rand().Int63(), b.Rand().Int63())
	assert.NotZero(t, NewTracker(0, 0).Seed)
}
