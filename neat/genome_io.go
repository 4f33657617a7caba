package neat

import (
	"encoding/json"
	"fmt"
	"os"
)

// genomeFileVersion is bumped whenever the saved genome layout changes.
const genomeFileVersion = 1

type genomeFile struct {
	Version int     `json:"version"`
	Genome  *Genome `json:"genome"`
}

// Save writes the genome to filePath as JSON.
func (g *Genome) Save(filePath string) error {
	data, err := json.MarshalIndent(genomeFile{Version: genomeFileVersion, Genome: g}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode genome %d: %w", g.ID, err)
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write genome file '%s': %w", filePath, err)
	}
	return nil
}

// LoadGenome reads a genome saved with Save and attaches config to it.
func LoadGenome(filePath string, config *GenomeConfig) (*Genome, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read genome file '%s': %w", filePath, err)
	}
	var f genomeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode genome file '%s': %w", filePath, err)
	}
	if f.Version != genomeFileVersion {
		return nil, fmt.Errorf("%w: genome file '%s' has version %d, want %d", ErrConfiguration, filePath, f.Version, genomeFileVersion)
	}
	if f.Genome == nil {
		return nil, fmt.Errorf("%w: genome file '%s' holds no genome", ErrConfiguration, filePath)
	}
	if config != nil {
		if got, want := len(f.Genome.InputIDs()), config.NumInputs; got != want {
			return nil, fmt.Errorf("%w: genome has %d inputs, config expects %d", ErrConfiguration, got, want)
		}
		if got, want := len(f.Genome.OutputIDs()), config.NumOutputs; got != want {
			return nil, fmt.Errorf("%w: genome has %d outputs, config expects %d", ErrConfiguration, got, want)
		}
	}
	f.Genome.Attach(config)
	f.Genome.reindex()
	return f.Genome, nil
}
