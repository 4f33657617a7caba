package neat

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	ID             int       // Unique identifier for the species.
	Created        int       // Generation number when the species was created.
	Representative *Genome   // Genome that compatibility is measured against.
	Genomes        []*Genome // Members of the current generation.
	Misfits        []*Genome // Offspring awaiting reclustering.
	Fitness        float64   // Derived fitness of the current members (species_fitness_func).
	FitnessHistory []float64 // One entry per generation, used for stagnation detection.
	Age            int       // Generations the species has been evaluated.
	BestFitness    float64   // Best Fitness ever recorded.
	LastImproved   int       // Age at which BestFitness last improved.

	config *Config
}

// NewSpecies creates a species founded by representative. The founder is
// also its first member.
func NewSpecies(id, generation int, representative *Genome, config *Config) *Species {
	return &Species{
		ID:             id,
		Created:        generation,
		Representative: representative,
		Genomes:        []*Genome{representative},
		FitnessHistory: []float64{},
		config:         config,
	}
}

// Attach sets the configuration of a decoded species.
func (s *Species) Attach(config *Config) {
	s.config = config
}

// String returns a short summary of the species.
func (s *Species) String() string {
	return fmt.Sprintf("Species(ID: %d, Age: %d, Members: %d, Fitness: %.4f, Best: %.4f)",
		s.ID, s.Age, len(s.Genomes), s.Fitness, s.BestFitness)
}

// IsCompatibleWith reports whether g is within the compatibility threshold
// of the representative.
func (s *Species) IsCompatibleWith(g *Genome) bool {
	return s.compatible(g.CompatibilityDistance(s.Representative))
}

// Match returns the distance from g to the representative, looked up in
// cache, and whether it is within the compatibility threshold.
func (s *Species) Match(g *Genome, cache *DistanceCache) (float64, bool) {
	d := cache.Distance(g, s.Representative)
	return d, s.compatible(d)
}

func (s *Species) compatible(distance float64) bool {
	return distance < s.config.SpeciesSet.CompatibilityThreshold
}

// AddGenome appends g to the current members. The representative is left unchanged.
func (s *Species) AddGenome(g *Genome) {
	s.Genomes = append(s.Genomes, g)
}

// Contains reports whether a member has the given genome id.
func (s *Species) Contains(genomeID int) bool {
	return slices.ContainsFunc(s.Genomes, func(g *Genome) bool { return g.ID == genomeID })
}

// Fitnesses returns the fitness of every current member.
func (s *Species) Fitnesses() []float64 {
	fitnesses := make([]float64, len(s.Genomes))
	for i, g := range s.Genomes {
		fitnesses[i] = g.Fitness
	}
	return fitnesses
}

// StepGeneration recomputes the derived fitness, records it in the history
// and ages the species by one generation.
func (s *Species) StepGeneration() {
	fn := StatFunctions[strings.ToLower(s.config.Stagnation.SpeciesFitnessFunc)]
	if fn == nil {
		fn = MaxFloat
	}

	previousBest := math.Inf(-1)
	if len(s.FitnessHistory) > 0 {
		previousBest = s.BestFitness
	}

	s.Fitness = fn(s.Fitnesses())
	s.FitnessHistory = append(s.FitnessHistory, s.Fitness)
	s.Age++

	if s.Fitness > previousBest {
		s.BestFitness = s.Fitness
		s.LastImproved = s.Age
	}
}

// IsStagnated reports whether the best fitness has not improved for more
// than max_stagnation generations. Protecting the champion's species is up
// to the caller.
func (s *Species) IsStagnated() bool {
	return s.Age-s.LastImproved > s.config.Stagnation.MaxStagnation
}

// IsExtinct reports whether the species holds neither members nor misfits.
func (s *Species) IsExtinct() bool {
	return len(s.Genomes) == 0 && len(s.Misfits) == 0
}

// AverageFitness returns the mean fitness of the current members.
func (s *Species) AverageFitness() float64 {
	return Mean(s.Fitnesses())
}

// Reproduce replaces the current members with numChildren offspring placed
// in Misfits. Parents are drawn from the fittest survival_threshold share of
// the members. A crossover_rate share of the children come from crossover of
// two distinct parents; the rest are mutated clones of one parent.
func (s *Species) Reproduce(numChildren int, tr *Tracker) {
	if numChildren <= 0 || len(s.Genomes) == 0 {
		s.Genomes = nil
		return
	}

	survivors := slices.Clone(s.Genomes)
	slices.SortStableFunc(survivors, func(a, b *Genome) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		default:
			return a.ID - b.ID
		}
	})
	cutoff := int(math.Ceil(s.config.Reproduction.SurvivalThreshold * float64(len(survivors))))
	survivors = survivors[:max(1, min(cutoff, len(survivors)))]

	numCrossover := 0
	if len(survivors) >= 2 {
		numCrossover = int(math.Round(s.config.Reproduction.CrossoverRate * float64(numChildren)))
	}

	rng := tr.Rand()
	pick := func() int {
		// Rank-biased: the product of two uniforms favors low ranks.
		return int(float64(len(survivors)) * rng.Float64() * rng.Float64())
	}

	for i := 0; i < numChildren; i++ {
		var child *Genome
		if i < numCrossover {
			a := pick()
			b := pick()
			if a == b {
				b = (a + 1) % len(survivors)
			}
			child = survivors[a].Crossover(survivors[b], tr)
		} else {
			child = survivors[pick()].Copy()
			child.ID = tr.GenomeID()
			child.RandomMutation(tr)
		}
		child.Fitness = 0
		s.Misfits = append(s.Misfits, child)
	}
	s.Genomes = nil
}

// --------------------------- DistanceCache ---------------------------

type genomePair struct {
	a, b int
}

// DistanceCache stores calculated distances between genomes to avoid
// redundant computations. Genome ids are never reused within a run, so a
// cache stays valid for as long as the genomes it has seen are unchanged.
type DistanceCache struct {
	distances map[genomePair]float64
	Hits      int
	Misses    int
}

// NewDistanceCache creates an empty distance cache.
func NewDistanceCache() *DistanceCache {
	return &DistanceCache{distances: make(map[genomePair]float64)}
}

// Distance calculates or retrieves the compatibility distance between two genomes.
func (dc *DistanceCache) Distance(g1, g2 *Genome) float64 {
	key := genomePair{g1.ID, g2.ID}
	if key.a > key.b {
		key.a, key.b = key.b, key.a
	}
	if d, ok := dc.distances[key]; ok {
		dc.Hits++
		return d
	}
	dc.Misses++
	d := g1.CompatibilityDistance(g2)
	dc.distances[key] = d
	return d
}

// Distances returns every distance computed so far.
func (dc *DistanceCache) Distances() []float64 {
	out := make([]float64, 0, len(dc.distances))
	for _, d := range dc.distances {
		out = append(out, d)
	}
	return out
}
