package evolution

import (
	"fmt"
	"math"
	"slices"

	"github.com/baldhumanity/ffneat/neat"
)

// Share is a species' claim on the next generation.
type Share struct {
	SpeciesID      int
	AverageFitness float64 // drives the proportional share
	Fitness        float64 // derived species fitness, breaks ties during correction
}

// AllocateOffspring converts fitness shares into whole offspring counts that
// sum to exactly popSize. Each species first asks for
// round(popSize * avg / total), where negative averages count as zero and a
// zero total counts as one. The rounding error is then worked off one child
// at a time from the species holding the largest count, lowest fitness first
// (then lowest id) among ties.
func AllocateOffspring(shares []Share, popSize int) ([]int, error) {
	if popSize < 0 {
		return nil, fmt.Errorf("%w: negative population size %d", neat.ErrAllocation, popSize)
	}
	if len(shares) == 0 {
		if popSize == 0 {
			return []int{}, nil
		}
		return nil, fmt.Errorf("%w: no species to allocate %d children to", neat.ErrAllocation, popSize)
	}

	total := 0.0
	for _, s := range shares {
		total += math.Max(s.AverageFitness, 0)
	}
	if total == 0 {
		total = 1
	}

	counts := make([]int, len(shares))
	sum := 0
	for i, s := range shares {
		counts[i] = int(math.Round(float64(popSize) * math.Max(s.AverageFitness, 0) / total))
		sum += counts[i]
	}

	errCount := sum - popSize
	delta := -1
	if errCount < 0 {
		delta = 1
	}

	// order is shares ranked for correction: ascending fitness, then id.
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case shares[a].Fitness < shares[b].Fitness:
			return -1
		case shares[a].Fitness > shares[b].Fitness:
			return 1
		default:
			return shares[a].SpeciesID - shares[b].SpeciesID
		}
	})

	for errCount != 0 {
		maxCount := slices.Max(counts)
		var tied []int
		for _, i := range order {
			if counts[i] == maxCount {
				tied = append(tied, i)
			}
		}
		n := min(abs(errCount), len(tied))
		for _, i := range tied[:n] {
			counts[i] += delta
			errCount += delta
		}
	}

	sum = 0
	for _, c := range counts {
		if c < 0 {
			return nil, fmt.Errorf("%w: negative offspring count %d", neat.ErrAllocation, c)
		}
		sum += c
	}
	if sum != popSize {
		return nil, fmt.Errorf("%w: allocated %d children for a population of %d", neat.ErrAllocation, sum, popSize)
	}
	return counts, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
