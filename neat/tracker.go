package neat

import (
	"math/rand"
	"time"
)

// Tracker owns the run-wide counters and the single random source used by
// mutation, crossover and reproduction. Independent runs use independent
// trackers.
type Tracker struct {
	Seed           int64
	NextGenomeID   int
	NextSpeciesID  int
	NextNodeID     int
	NextInnovation int
	// Innovations maps an endpoint pair to its innovation number, so the same
	// structural edge is the same gene in every genome of a run.
	Innovations map[EdgeKey]int
	// Splits maps a split edge's innovation number to the hidden node id that
	// replaced it.
	Splits map[int]int

	rng *rand.Rand
}

// NewTracker creates a tracker whose node ids start at firstNodeID.
// A zero seed picks one from the clock.
func NewTracker(seed int64, firstNodeID int) *Tracker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Tracker{
		Seed:           seed,
		NextGenomeID:   1,
		NextSpeciesID:  1,
		NextNodeID:     firstNodeID,
		NextInnovation: 1,
		Innovations:    make(map[EdgeKey]int),
		Splits:         make(map[int]int),
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// Rand returns the tracker's random source.
func (t *Tracker) Rand() *rand.Rand {
	if t.rng == nil {
		t.rng = rand.New(rand.NewSource(t.Seed))
	}
	return t.rng
}

// Reseed replaces the random source. Used after restoring a snapshot, since
// the generator state itself is not serialized.
func (t *Tracker) Reseed(seed int64) {
	t.rng = rand.New(rand.NewSource(seed))
}

// GenomeID returns a fresh genome id.
func (t *Tracker) GenomeID() int {
	id := t.NextGenomeID
	t.NextGenomeID++
	return id
}

// SpeciesID returns a fresh species id.
func (t *Tracker) SpeciesID() int {
	id := t.NextSpeciesID
	t.NextSpeciesID++
	return id
}

// NodeID returns a fresh node id.
func (t *Tracker) NodeID() int {
	id := t.NextNodeID
	t.NextNodeID++
	return id
}

// Innovation returns the innovation number of the edge in->out, registering
// it on first sight.
func (t *Tracker) Innovation(in, out int) int {
	key := EdgeKey{In: in, Out: out}
	if n, ok := t.Innovations[key]; ok {
		return n
	}
	n := t.NextInnovation
	t.NextInnovation++
	t.Innovations[key] = n
	return n
}

// SplitNode returns the node id for splitting the edge with the given
// innovation number. taken reports ids the genome already holds; a taken id
// is never handed out.
func (t *Tracker) SplitNode(innovation int, taken func(id int) bool) int {
	if id, ok := t.Splits[innovation]; ok && !taken(id) {
		return id
	}
	id := t.NodeID()
	for taken(id) {
		id = t.NodeID()
	}
	if _, ok := t.Splits[innovation]; !ok {
		t.Splits[innovation] = id
	}
	return id
}
