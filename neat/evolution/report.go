package evolution

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/baldhumanity/ffneat/neat"
)

const reportWidth = 65

// reportGeneration prints the species table and champion summary for the
// generation just evaluated.
func (p *Population) reportGeneration(elapsed time.Duration) {
	if p.Output == io.Discard {
		return
	}
	w := p.Output
	rule := strings.Repeat("-", reportWidth)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-8s%5s%10s%15s%15s%12s\n", "Species", "Age", "Members", "Best Fitness", "Ave Fitness", "Std Dev")
	fmt.Fprintln(w, rule)
	for _, s := range p.Species {
		fmt.Fprintln(w, speciesEntry(s))
	}

	fmt.Fprintf(w, "Best genome in generation %d: genome %d, fitness: %.2f\n",
		p.Generation, p.GenerationChampion.ID, p.GenerationChampion.Fitness)
	fmt.Fprintf(w, "Best genome so far: %d, fitness: %.2f", p.Champion.ID, p.Champion.Fitness)
	goal := p.goal
	if goal == nil {
		goal = p.Config.Neat.FitnessGoal
	}
	if goal != nil && *goal != 0 {
		fmt.Fprintf(w, " (%.2f%% of %g goal)", 100*p.Champion.Fitness / *goal, *goal)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Processing time for generation %d: %.2fs\n\n", p.Generation, elapsed.Seconds())
}

func speciesEntry(s *neat.Species) string {
	fitnesses := s.Fitnesses()
	return fmt.Sprintf("%-8d%5d%10d%15.3f%15.3f%12.3f",
		s.ID, s.Age, len(s.Genomes), neat.MaxFloat(fitnesses), neat.Mean(fitnesses), neat.Stdev(fitnesses))
}
