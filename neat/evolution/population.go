package evolution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/baldhumanity/ffneat/neat"
	"github.com/baldhumanity/ffneat/neat/nn"
)

// EvaluationFunc scores one network. It may be called concurrently for
// different networks and must not touch shared state without its own locking.
type EvaluationFunc func(ctx context.Context, net *nn.FeedForwardNetwork) (float64, error)

// State is the lifecycle stage of a Population.
type State int

const (
	Uninitialized State = iota
	Ready
	Evaluating
	PostProcessing
	Terminated
)

var stateNames = [...]string{
	Uninitialized:  "uninitialized",
	Ready:          "ready",
	Evaluating:     "evaluating",
	PostProcessing: "post-processing",
	Terminated:     "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// GenerationRecord is the per-generation history entry.
type GenerationRecord struct {
	Generation                int
	Fitnesses                 []float64   // every genome's fitness, in evaluation order
	Allocation                map[int]int // species id -> children allocated
	NumSpecies                int
	ChampionFitness           float64
	GenerationChampionFitness float64
}

// Offspring returns the total number of children allocated in the generation.
func (r GenerationRecord) Offspring() int {
	n := 0
	for _, c := range r.Allocation {
		n += c
	}
	return n
}

// Population holds the state of the NEAT evolutionary process.
// It is not safe for concurrent use; only the evaluation step runs in parallel.
type Population struct {
	Config             *neat.Config
	Genomes            []*neat.Genome
	Species            []*neat.Species
	Misfits            []*neat.Genome // genomes not yet assigned to a species
	Networks           []*nn.FeedForwardNetwork
	Generation         int
	Champion           *neat.Genome // best genome of the run, an independent copy
	GenerationChampion *neat.Genome // best genome of the last evaluated generation
	ChampionSpeciesID  int          // species that produced the champion, 0 if none
	History            []GenerationRecord
	Tracker            *neat.Tracker
	RunID              string

	// Runtime attachments; not part of a snapshot.
	Logger  *slog.Logger
	Output  io.Writer
	Metrics *Metrics
	Store   SnapshotStore

	goal  *float64 // fitness goal of the current Run
	state State
	err   error
}

// NewPopulation creates the first generation: pop_size minimal genomes, each
// mutated num_initial_mutations times, clustered into species, with their
// networks built.
func NewPopulation(config *neat.Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Population{
		Config:  config,
		Tracker: neat.NewTracker(config.Neat.Seed, neat.FirstFreeNodeID(&config.Genome)),
		RunID:   uuid.NewString(),
	}
	if err := p.attachOutput(); err != nil {
		return nil, err
	}

	for i := 0; i < config.Neat.PopSize; i++ {
		g, err := neat.NewDefaultGenome(p.Tracker.GenomeID(), &config.Genome)
		if err != nil {
			return nil, err
		}
		p.Misfits = append(p.Misfits, g)
	}
	for i := 0; i < config.Neat.NumInitialMutations; i++ {
		for _, g := range p.Misfits {
			g.RandomMutation(p.Tracker)
		}
	}

	p.Generation = 1
	p.setSpecies()
	if err := p.setNetworks(); err != nil {
		return nil, err
	}
	p.state = Ready

	p.Logger.Info("population created",
		slog.String("run_id", p.RunID),
		slog.Int("genomes", len(p.Genomes)),
		slog.Int("species", len(p.Species)),
		slog.Int64("seed", p.Tracker.Seed))
	return p, nil
}

func (p *Population) attachOutput() error {
	out, err := p.Config.Neat.OutputWriter()
	if err != nil {
		return err
	}
	p.Output = out
	p.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return nil
}

// State returns the lifecycle stage.
func (p *Population) State() State {
	return p.state
}

// Err returns the error that terminated the population, if any.
func (p *Population) Err() error {
	return p.err
}

// Size is the number of genomes plus misfits. It equals pop_size between generations.
func (p *Population) Size() int {
	return len(p.Genomes) + len(p.Misfits)
}

// String returns a short summary of the population.
func (p *Population) String() string {
	return fmt.Sprintf("Population of %d individuals in %d species. %d inputs, %d outputs.",
		p.Size(), len(p.Species), p.Config.Genome.NumInputs, p.Config.Genome.NumOutputs)
}

// Run evolves generations until the generation counter passes numGenerations
// or the champion reaches fitnessGoal. Zero and nil fall back to the
// configured num_generations and fitness_goal; with neither set Run fails
// with neat.ErrConfiguration. It returns the champion.
func (p *Population) Run(ctx context.Context, eval EvaluationFunc, numGenerations int, fitnessGoal *float64) (*neat.Genome, error) {
	if numGenerations <= 0 && fitnessGoal == nil {
		numGenerations = p.Config.Neat.NumGenerations
		fitnessGoal = p.Config.Neat.FitnessGoal
	}
	if numGenerations <= 0 && fitnessGoal == nil {
		return nil, fmt.Errorf("%w: neither a generation limit nor a fitness goal is set", neat.ErrConfiguration)
	}
	p.goal = fitnessGoal

	for (numGenerations <= 0 || p.Generation <= numGenerations) &&
		(fitnessGoal == nil || p.Champion == nil || p.Champion.Fitness < *fitnessGoal) {
		if err := p.RunGeneration(ctx, eval); err != nil {
			return p.Champion, err
		}
	}
	return p.Champion, nil
}

// RunGeneration evaluates the current generation and produces the next one.
// An evaluation error is returned as is and leaves the population Ready, so
// the generation can be retried. Invariant violations terminate the population.
func (p *Population) RunGeneration(ctx context.Context, eval EvaluationFunc) error {
	if err := p.checkReady(); err != nil {
		return err
	}

	start := time.Now()
	p.beginGeneration()
	p.state = Evaluating
	if err := p.evaluate(ctx, eval); err != nil {
		p.state = Ready
		return err
	}
	return p.advance(ctx, start)
}

// Advance produces the next generation from fitnesses the caller has already
// assigned to every genome in p.Genomes, for callers that drive evaluation
// themselves instead of through RunGeneration.
func (p *Population) Advance(ctx context.Context) error {
	if err := p.checkReady(); err != nil {
		return err
	}
	start := time.Now()
	p.beginGeneration()
	return p.advance(ctx, start)
}

func (p *Population) checkReady() error {
	switch p.state {
	case Terminated:
		return p.err
	case Ready:
		return nil
	default:
		return fmt.Errorf("%w: population is %s, not ready", neat.ErrConfiguration, p.state)
	}
}

func (p *Population) beginGeneration() {
	fmt.Fprintf(p.Output, "Beginning generation %d with %d individuals of %d species.\n",
		p.Generation, len(p.Genomes), len(p.Species))
}

// advance runs every step after evaluation and moves the population to the
// next generation.
func (p *Population) advance(ctx context.Context, start time.Time) error {
	p.Metrics.evaluated(len(p.Genomes))
	p.state = PostProcessing
	record := GenerationRecord{
		Generation: p.Generation,
		Fitnesses:  make([]float64, len(p.Genomes)),
	}
	for i, g := range p.Genomes {
		record.Fitnesses[i] = g.Fitness
	}

	p.setChampions()
	for _, s := range p.Species {
		s.StepGeneration()
	}
	p.reportGeneration(time.Since(start))

	p.removeStagnatedSpecies()

	allocation, err := p.reproduce()
	if err != nil {
		return p.fail(err)
	}
	record.Allocation = allocation

	p.transferOffspring()
	if p.Size() != p.Config.Neat.PopSize {
		return p.fail(fmt.Errorf("%w: population holds %d genomes, want %d", neat.ErrAllocation, p.Size(), p.Config.Neat.PopSize))
	}
	p.setSpecies()
	p.removeExtinctSpecies()
	if err := p.setNetworks(); err != nil {
		return p.fail(err)
	}

	record.NumSpecies = len(p.Species)
	record.ChampionFitness = p.Champion.Fitness
	record.GenerationChampionFitness = p.GenerationChampion.Fitness
	p.History = append(p.History, record)

	p.Metrics.generationDone(p.Generation, len(p.Species), p.Champion.Fitness, p.GenerationChampion.Fitness, time.Since(start))
	p.Generation++
	p.state = Ready

	return p.persist(ctx)
}

// fail moves the population to Terminated; every later call returns err.
func (p *Population) fail(err error) error {
	p.state = Terminated
	p.err = err
	p.Logger.Error("population terminated", slog.Int("generation", p.Generation), slog.String("error", err.Error()))
	return err
}

// setChampions sorts genomes by fitness, best first, snapshots the best as
// the generation champion and promotes it when it beats the champion.
func (p *Population) setChampions() {
	slices.SortStableFunc(p.Genomes, func(a, b *neat.Genome) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		default:
			return 0
		}
	})

	best := p.Genomes[0]
	p.GenerationChampion = best.Copy()
	if p.Champion == nil || p.GenerationChampion.Fitness > p.Champion.Fitness {
		p.Champion = p.GenerationChampion
		p.ChampionSpeciesID = 0
		for _, s := range p.Species {
			if s.Contains(best.ID) {
				p.ChampionSpeciesID = s.ID
				break
			}
		}
		p.Logger.Info("new champion",
			slog.Int("generation", p.Generation),
			slog.Int("genome", p.Champion.ID),
			slog.Int("species", p.ChampionSpeciesID),
			slog.Float64("fitness", p.Champion.Fitness))
	}
}

// reproduce allocates children across species, fittest species first, and
// has each species breed its share into its misfits.
func (p *Population) reproduce() (map[int]int, error) {
	slices.SortStableFunc(p.Species, func(a, b *neat.Species) int {
		switch {
		case a.Fitness > b.Fitness:
			return -1
		case a.Fitness < b.Fitness:
			return 1
		default:
			return a.ID - b.ID
		}
	})

	shares := make([]Share, len(p.Species))
	for i, s := range p.Species {
		shares[i] = Share{SpeciesID: s.ID, AverageFitness: s.AverageFitness(), Fitness: s.Fitness}
	}
	counts, err := AllocateOffspring(shares, p.Config.Neat.PopSize)
	if err != nil {
		return nil, err
	}

	allocation := make(map[int]int, len(p.Species))
	for i, s := range p.Species {
		allocation[s.ID] = counts[i]
		s.Reproduce(counts[i], p.Tracker)
	}
	return allocation, nil
}

// transferOffspring moves every species' genomes and misfits into the
// population lists and empties the species.
func (p *Population) transferOffspring() {
	p.Genomes = p.Genomes[:0]
	p.Misfits = p.Misfits[:0]
	for _, s := range p.Species {
		p.Genomes = append(p.Genomes, s.Genomes...)
		p.Misfits = append(p.Misfits, s.Misfits...)
		s.Genomes = nil
		s.Misfits = nil
	}
}

// setSpecies assigns every misfit to the nearest compatible species, founding
// a new species when none is compatible. Equal distances go to the species
// listed first. Afterwards each species' representative becomes the member
// closest to the old one.
func (p *Population) setSpecies() {
	cache := neat.NewDistanceCache()
	for _, g := range p.Misfits {
		var best *neat.Species
		bestDistance := math.Inf(1)
		for _, s := range p.Species {
			if d, ok := s.Match(g, cache); ok && d < bestDistance {
				best, bestDistance = s, d
			}
		}
		if best == nil {
			s := neat.NewSpecies(p.Tracker.SpeciesID(), p.Generation, g, p.Config)
			p.Species = append(p.Species, s)
			p.Logger.Debug("species created", slog.Int("species", s.ID), slog.Int("genome", g.ID))
		} else {
			best.AddGenome(g)
		}
		p.Genomes = append(p.Genomes, g)
	}
	p.Misfits = p.Misfits[:0]

	for _, s := range p.Species {
		if len(s.Genomes) == 0 {
			continue
		}
		rep := s.Genomes[0]
		repDistance := cache.Distance(rep, s.Representative)
		for _, g := range s.Genomes[1:] {
			if d := cache.Distance(g, s.Representative); d < repDistance {
				rep, repDistance = g, d
			}
		}
		s.Representative = rep
	}
}

// removeExtinctSpecies drops species left without members.
func (p *Population) removeExtinctSpecies() {
	var removed []int
	p.Species = slices.DeleteFunc(p.Species, func(s *neat.Species) bool {
		if s.IsExtinct() {
			removed = append(removed, s.ID)
			return true
		}
		return false
	})
	for _, id := range removed {
		p.Logger.Info("removing extinct species", slog.Int("species", id), slog.Int("generation", p.Generation))
	}
	p.Metrics.removed("extinct", len(removed))
}

// setNetworks compiles a fresh network for every genome.
func (p *Population) setNetworks() error {
	p.Networks = make([]*nn.FeedForwardNetwork, len(p.Genomes))
	for i, g := range p.Genomes {
		net, err := nn.Build(g)
		if err != nil {
			return err
		}
		p.Networks[i] = net
	}
	return nil
}

// persist writes the champion file and the store snapshot, when configured.
func (p *Population) persist(ctx context.Context) error {
	if path := p.Config.Neat.ChampionFile; path != "" {
		if err := p.Champion.Save(path); err != nil {
			return err
		}
	}
	if p.Store == nil {
		return nil
	}

	snapshot, err := p.encodeSnapshot()
	if err != nil {
		return err
	}
	if err := p.Store.SaveSnapshot(ctx, p.RunID, p.Generation, snapshot); err != nil {
		return fmt.Errorf("failed to store snapshot of generation %d: %w", p.Generation, err)
	}
	if err := p.Store.SaveGenome(ctx, p.RunID, "champion", p.Champion); err != nil {
		return fmt.Errorf("failed to store champion: %w", err)
	}
	if err := p.Store.SaveFitnessHistory(ctx, p.RunID, p.championHistory()); err != nil {
		return fmt.Errorf("failed to store fitness history: %w", err)
	}
	p.Logger.Debug("snapshot stored", slog.String("run_id", p.RunID), slog.Int("generation", p.Generation))
	return nil
}

func (p *Population) championHistory() []float64 {
	history := make([]float64, len(p.History))
	for i, r := range p.History {
		history[i] = r.ChampionFitness
	}
	return history
}

// RunData returns every recorded generation's genome fitnesses.
func (p *Population) RunData() [][]float64 {
	data := make([][]float64, len(p.History))
	for i, r := range p.History {
		data[i] = slices.Clone(r.Fitnesses)
	}
	return data
}

// SaveRunData writes RunData to filePath as JSON.
func (p *Population) SaveRunData(filePath string) error {
	data, err := json.Marshal(p.RunData())
	if err != nil {
		return fmt.Errorf("failed to encode run data: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run data '%s': %w", filePath, err)
	}
	return nil
}

// LoadRunData reads a file written by SaveRunData.
func LoadRunData(filePath string) ([][]float64, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read run data '%s': %w", filePath, err)
	}
	var runData [][]float64
	if err := json.Unmarshal(data, &runData); err != nil {
		return nil, fmt.Errorf("failed to decode run data '%s': %w", filePath, err)
	}
	return runData, nil
}
