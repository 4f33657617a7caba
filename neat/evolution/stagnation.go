package evolution

import (
	"log/slog"
	"slices"

	"github.com/baldhumanity/ffneat/neat"
)

// stagnatedSpecies returns the species to drop for stagnation. The species
// that produced the champion is never dropped, and when every species has
// stagnated the fittest one (lowest id on a tie) is kept so the population
// can still reproduce.
func stagnatedSpecies(species []*neat.Species, championSpeciesID int) []*neat.Species {
	var stagnated []*neat.Species
	for _, s := range species {
		if s.IsStagnated() && s.ID != championSpeciesID {
			stagnated = append(stagnated, s)
		}
	}
	if len(stagnated) == 0 || len(stagnated) < len(species) {
		return stagnated
	}

	fittest := stagnated[0]
	for _, s := range stagnated[1:] {
		if s.Fitness > fittest.Fitness || (s.Fitness == fittest.Fitness && s.ID < fittest.ID) {
			fittest = s
		}
	}
	return slices.DeleteFunc(stagnated, func(s *neat.Species) bool { return s == fittest })
}

// removeStagnatedSpecies drops stagnated species together with their members.
func (p *Population) removeStagnatedSpecies() {
	stagnated := stagnatedSpecies(p.Species, p.ChampionSpeciesID)
	if len(stagnated) == 0 {
		return
	}
	p.Species = slices.DeleteFunc(p.Species, func(s *neat.Species) bool {
		return slices.Contains(stagnated, s)
	})
	for _, s := range stagnated {
		p.Logger.Info("removing stagnated species",
			slog.Int("species", s.ID),
			slog.Int("age", s.Age),
			slog.Int("last_improved", s.LastImproved),
			slog.Float64("best_fitness", s.BestFitness))
	}
	p.Metrics.removed("stagnated", len(stagnated))
}
