package evolution

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/baldhumanity/ffneat/neat"
)

// snapshotVersion is bumped whenever the snapshot layout changes.
const snapshotVersion = 1

// populationSaveData holds the parts of a Population that survive a restart.
// Config, logger, output, metrics and store are reattached on load.
// gob does not keep pointer identity, so species members are restored from
// Genomes by id.
type populationSaveData struct {
	Version            int
	RunID              string
	NumInputs          int
	NumOutputs         int
	Generation         int
	Genomes            []*neat.Genome
	Species            []*neat.Species
	Misfits            []*neat.Genome
	Champion           *neat.Genome
	GenerationChampion *neat.Genome
	ChampionSpeciesID  int
	History            []GenerationRecord
	Tracker            *neat.Tracker
}

// SaveCheckpoint saves the population to a gzip compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	if err := p.WriteSnapshot(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close checkpoint file '%s': %w", filePath, err)
	}
	p.Logger.Info("checkpoint saved", slog.String("path", filePath), slog.Int("generation", p.Generation))
	return nil
}

// LoadCheckpoint restores a population saved with SaveCheckpoint, attaching config.
func LoadCheckpoint(filePath string, config *neat.Config) (*Population, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	p, err := ReadSnapshot(file, config)
	if err != nil {
		return nil, fmt.Errorf("checkpoint '%s': %w", filePath, err)
	}
	p.Logger.Info("checkpoint loaded", slog.String("path", filePath), slog.Int("generation", p.Generation))
	return p, nil
}

// WriteSnapshot encodes the population state to w.
func (p *Population) WriteSnapshot(w io.Writer) error {
	if p.state != Ready {
		return fmt.Errorf("%w: cannot snapshot a population that is %s", neat.ErrConfiguration, p.state)
	}
	saveData := populationSaveData{
		Version:            snapshotVersion,
		RunID:              p.RunID,
		NumInputs:          p.Config.Genome.NumInputs,
		NumOutputs:         p.Config.Genome.NumOutputs,
		Generation:         p.Generation,
		Genomes:            p.Genomes,
		Species:            p.Species,
		Misfits:            p.Misfits,
		Champion:           p.Champion,
		GenerationChampion: p.GenerationChampion,
		ChampionSpeciesID:  p.ChampionSpeciesID,
		History:            p.History,
		Tracker:            p.Tracker,
	}

	gzWriter := gzip.NewWriter(w)
	if err := gob.NewEncoder(gzWriter).Encode(saveData); err != nil {
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush population data: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a population written by WriteSnapshot. The snapshot
// must match config's input and output counts.
func ReadSnapshot(r io.Reader, config *neat.Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for snapshot: %w", err)
	}
	defer gzReader.Close()

	var saveData populationSaveData
	if err := gob.NewDecoder(gzReader).Decode(&saveData); err != nil {
		return nil, fmt.Errorf("failed to decode population data: %w", err)
	}
	if saveData.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: snapshot version %d, want %d", neat.ErrConfiguration, saveData.Version, snapshotVersion)
	}
	if saveData.NumInputs != config.Genome.NumInputs || saveData.NumOutputs != config.Genome.NumOutputs {
		return nil, fmt.Errorf("%w: snapshot has %d inputs and %d outputs, config has %d and %d", neat.ErrConfiguration,
			saveData.NumInputs, saveData.NumOutputs, config.Genome.NumInputs, config.Genome.NumOutputs)
	}
	if saveData.Tracker == nil {
		return nil, fmt.Errorf("%w: snapshot holds no tracker", neat.ErrConfiguration)
	}

	p := &Population{
		Config:             config,
		Genomes:            saveData.Genomes,
		Species:            saveData.Species,
		Misfits:            saveData.Misfits,
		Generation:         saveData.Generation,
		Champion:           saveData.Champion,
		GenerationChampion: saveData.GenerationChampion,
		ChampionSpeciesID:  saveData.ChampionSpeciesID,
		History:            saveData.History,
		Tracker:            saveData.Tracker,
		RunID:              saveData.RunID,
	}
	if err := p.attachOutput(); err != nil {
		return nil, err
	}
	p.relink()
	// The generator state is not saved; continue from a sequence derived from
	// the seed and generation.
	p.Tracker.Reseed(p.Tracker.Seed + int64(p.Generation))

	if err := p.setNetworks(); err != nil {
		return nil, err
	}
	p.state = Ready
	return p, nil
}

// relink reattaches configuration and restores shared genome pointers.
func (p *Population) relink() {
	genomeConfig := &p.Config.Genome
	byID := make(map[int]*neat.Genome, len(p.Genomes))
	for _, g := range p.Genomes {
		g.Attach(genomeConfig)
		byID[g.ID] = g
	}
	for _, g := range p.Misfits {
		g.Attach(genomeConfig)
	}
	for _, g := range []*neat.Genome{p.Champion, p.GenerationChampion} {
		if g != nil {
			g.Attach(genomeConfig)
		}
	}
	for _, s := range p.Species {
		s.Attach(p.Config)
		if live, ok := byID[s.Representative.ID]; ok {
			s.Representative = live
		} else {
			s.Representative.Attach(genomeConfig)
		}
		for i, g := range s.Genomes {
			if live, ok := byID[g.ID]; ok {
				s.Genomes[i] = live
			} else {
				g.Attach(genomeConfig)
			}
		}
	}
	if p.Tracker.Innovations == nil {
		p.Tracker.Innovations = make(map[neat.EdgeKey]int)
	}
	if p.Tracker.Splits == nil {
		p.Tracker.Splits = make(map[int]int)
	}
}

func (p *Population) encodeSnapshot() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.WriteSnapshot(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Resume restores the latest snapshot stored for runID.
func Resume(ctx context.Context, source SnapshotSource, runID string, config *neat.Config) (*Population, error) {
	_, snapshot, ok, err := source.LatestSnapshot(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot of run %s: %w", runID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no snapshot stored for run %s", neat.ErrConfiguration, runID)
	}
	return ReadSnapshot(bytes.NewReader(snapshot), config)
}
