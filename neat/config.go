package neat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig         `yaml:"neat"`
	Genome       GenomeConfig       `yaml:"genome"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	SpeciesSet   SpeciesSetConfig   `yaml:"species_set"`
	Stagnation   StagnationConfig   `yaml:"stagnation"`
}

// NeatConfig holds run-level parameters.
type NeatConfig struct {
	PopSize             int   `ini:"pop_size" yaml:"pop_size"`
	NumGenerations      int   `ini:"num_generations" yaml:"num_generations"` // 0 means no generation limit
	NumInitialMutations int   `ini:"num_initial_mutations" yaml:"num_initial_mutations"`
	Seed                int64 `ini:"seed" yaml:"seed"`       // 0 seeds from the clock
	Workers             int   `ini:"workers" yaml:"workers"` // evaluation goroutines, 0 means GOMAXPROCS
	// Output names the stream reports are written to: stdout, stderr or none.
	Output       string `ini:"output" yaml:"output"`
	ChampionFile string `ini:"champion_file" yaml:"champion_file"`
	// FitnessGoal is nil when the run has no fitness goal.
	FitnessGoal *float64 `ini:"-" yaml:"fitness_goal"`
}

// GenomeConfig holds parameters specific to the structure and mutation of genomes.
type GenomeConfig struct {
	// --- Top-level Genome parameters ---
	NumInputs                        int     `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs                       int     `ini:"num_outputs" yaml:"num_outputs"`
	NumHidden                        int     `ini:"num_hidden" yaml:"num_hidden"`
	MaxHidden                        int     `ini:"max_hidden" yaml:"max_hidden"`
	OutputActivationName             string  `ini:"output_activation" yaml:"output_activation"`
	HiddenActivationName             string  `ini:"hidden_activation" yaml:"hidden_activation"`
	HiddenAggregationName            string  `ini:"hidden_aggregation" yaml:"hidden_aggregation"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient" yaml:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient" yaml:"compatibility_weight_coefficient"`

	// --- Connection parameters ---
	WeightInitMean    float64 `ini:"weight_init_mean" yaml:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev" yaml:"weight_init_stdev"`
	WeightMutatePower float64 `ini:"weight_mutate_power" yaml:"weight_mutate_power"`
	WeightMinValue    float64 `ini:"weight_min_value" yaml:"weight_min_value"`
	WeightMaxValue    float64 `ini:"weight_max_value" yaml:"weight_max_value"`
	ReenableProb      float64 `ini:"reenable_prob" yaml:"reenable_prob"` // chance a gene disabled in either parent is enabled in the child

	// --- Node parameters ---
	BiasMutatePower float64 `ini:"bias_mutate_power" yaml:"bias_mutate_power"`
	BiasMinValue    float64 `ini:"bias_min_value" yaml:"bias_min_value"`
	BiasMaxValue    float64 `ini:"bias_max_value" yaml:"bias_max_value"`

	// --- Relative weights of the mutation operators ---
	WeightPerturbWeight float64 `ini:"weight_perturb_weight" yaml:"weight_perturb_weight"`
	WeightResetWeight   float64 `ini:"weight_reset_weight" yaml:"weight_reset_weight"`
	AddEdgeWeight       float64 `ini:"add_edge_weight" yaml:"add_edge_weight"`
	RemoveEdgeWeight    float64 `ini:"remove_edge_weight" yaml:"remove_edge_weight"`
	AddNodeWeight       float64 `ini:"add_node_weight" yaml:"add_node_weight"`
	RemoveNodeWeight    float64 `ini:"remove_node_weight" yaml:"remove_node_weight"`
	ToggleEdgeWeight    float64 `ini:"toggle_edge_weight" yaml:"toggle_edge_weight"`
	ToggleNodeWeight    float64 `ini:"toggle_node_weight" yaml:"toggle_node_weight"`
	BiasPerturbWeight   float64 `ini:"bias_perturb_weight" yaml:"bias_perturb_weight"`

	// --- Calculated/Derived (set by Validate) ---
	OutputActivation  Activation  `ini:"-" yaml:"-"`
	HiddenActivation  Activation  `ini:"-" yaml:"-"`
	HiddenAggregation Aggregation `ini:"-" yaml:"-"`
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	CrossoverRate     float64 `ini:"crossover_rate" yaml:"crossover_rate"`         // fraction of children produced by crossover
	SurvivalThreshold float64 `ini:"survival_threshold" yaml:"survival_threshold"` // fraction of each species eligible as parents
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
}

// StagnationConfig holds parameters related to species stagnation.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func" yaml:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation" yaml:"max_stagnation"`
}

// DefaultConfig returns a validated configuration for the given network shape.
func DefaultConfig(numInputs, numOutputs int) *Config {
	config := &Config{
		Neat: NeatConfig{
			PopSize:             150,
			NumInitialMutations: 1,
			Output:              "stdout",
		},
		Genome: GenomeConfig{
			NumInputs:                        numInputs,
			NumOutputs:                       numOutputs,
			MaxHidden:                        20,
			OutputActivationName:             "sigmoid",
			HiddenActivationName:             "tanh",
			HiddenAggregationName:            "sum",
			CompatibilityDisjointCoefficient: 1.0,
			CompatibilityWeightCoefficient:   0.5,
			WeightInitMean:                   0.0,
			WeightInitStdev:                  1.0,
			WeightMutatePower:                0.5,
			WeightMinValue:                   -30,
			WeightMaxValue:                   30,
			ReenableProb:                     0.25,
			BiasMutatePower:                  0.5,
			BiasMinValue:                     -30,
			BiasMaxValue:                     30,
			WeightPerturbWeight:              0.30,
			WeightResetWeight:                0.05,
			AddEdgeWeight:                    0.20,
			RemoveEdgeWeight:                 0.05,
			AddNodeWeight:                    0.10,
			RemoveNodeWeight:                 0.03,
			ToggleEdgeWeight:                 0.05,
			ToggleNodeWeight:                 0.02,
			BiasPerturbWeight:                0.20,
		},
		Reproduction: ReproductionConfig{
			CrossoverRate:     0.75,
			SurvivalThreshold: 0.5,
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityThreshold: 3.0,
		},
		Stagnation: StagnationConfig{
			SpeciesFitnessFunc: "max",
			MaxStagnation:      15,
		},
	}
	// The defaults only fail validation for a non-positive shape, which the
	// caller will see from NewPopulation.
	_ = config.Validate()
	return config
}

// LoadConfig loads configuration parameters from an INI file, or from YAML
// when the file ends in .yaml or .yml. Keys absent from the file keep their
// DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return loadYAMLConfig(filePath)
	default:
		return loadINIConfig(filePath)
	}
}

func loadINIConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true, // Allow # comments starting with # or ;
		UnescapeValueCommentSymbols: true, // If # or ; appear in value, treat as value
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load config file '%s': %v", ErrConfiguration, filePath, err)
	}

	config := DefaultConfig(0, 0)

	// Map sections to structs
	if err := cfg.Section("NEAT").MapTo(&config.Neat); err != nil {
		return nil, fmt.Errorf("%w: failed to map [NEAT] section: %v", ErrConfiguration, err)
	}
	if err := cfg.Section("DefaultGenome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("%w: failed to map [DefaultGenome] section: %v", ErrConfiguration, err)
	}
	if err := cfg.Section("DefaultReproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("%w: failed to map [DefaultReproduction] section: %v", ErrConfiguration, err)
	}
	if err := cfg.Section("DefaultSpeciesSet").MapTo(&config.SpeciesSet); err != nil {
		return nil, fmt.Errorf("%w: failed to map [DefaultSpeciesSet] section: %v", ErrConfiguration, err)
	}
	if err := cfg.Section("DefaultStagnation").MapTo(&config.Stagnation); err != nil {
		return nil, fmt.Errorf("%w: failed to map [DefaultStagnation] section: %v", ErrConfiguration, err)
	}

	// An absent fitness_goal means "no goal", which a plain float cannot express.
	if key, err := cfg.Section("NEAT").GetKey("fitness_goal"); err == nil && cleanIniString(key.String()) != "" {
		goal, err := key.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: invalid fitness_goal '%s': %v", ErrConfiguration, key.String(), err)
		}
		config.Neat.FitnessGoal = &goal
	}

	// --- Explicitly clean potentially problematic string values ---
	config.Neat.Output = cleanIniString(config.Neat.Output)
	config.Neat.ChampionFile = cleanIniString(config.Neat.ChampionFile)
	config.Genome.OutputActivationName = cleanIniString(config.Genome.OutputActivationName)
	config.Genome.HiddenActivationName = cleanIniString(config.Genome.HiddenActivationName)
	config.Genome.HiddenAggregationName = cleanIniString(config.Genome.HiddenAggregationName)
	config.Stagnation.SpeciesFitnessFunc = cleanIniString(config.Stagnation.SpeciesFitnessFunc)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadYAMLConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file '%s': %v", ErrConfiguration, filePath, err)
	}

	config := DefaultConfig(0, 0)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file '%s': %v", ErrConfiguration, filePath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every parameter and resolves the derived fields.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return configError("pop_size must be positive")
	}
	if c.Neat.NumGenerations < 0 {
		return configError("num_generations cannot be negative")
	}
	if c.Neat.NumInitialMutations < 0 {
		return configError("num_initial_mutations cannot be negative")
	}
	if c.Neat.Workers < 0 {
		return configError("workers cannot be negative")
	}
	if _, err := c.Neat.OutputWriter(); err != nil {
		return err
	}

	if err := c.Genome.Validate(); err != nil {
		return err
	}

	if c.Reproduction.CrossoverRate < 0 || c.Reproduction.CrossoverRate > 1 {
		return configError("crossover_rate must be between 0 and 1")
	}
	if c.Reproduction.SurvivalThreshold <= 0 || c.Reproduction.SurvivalThreshold > 1 {
		return configError("survival_threshold must be in (0, 1]")
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return configError("compatibility_threshold cannot be negative")
	}
	if c.Stagnation.MaxStagnation <= 0 {
		return configError("max_stagnation must be positive")
	}
	if _, ok := StatFunctions[strings.ToLower(c.Stagnation.SpeciesFitnessFunc)]; !ok {
		return configError(fmt.Sprintf("invalid species_fitness_func '%s'", c.Stagnation.SpeciesFitnessFunc))
	}
	return nil
}

// Validate checks the genome parameters and resolves activation and
// aggregation names.
func (gc *GenomeConfig) Validate() error {
	if gc.NumInputs <= 0 {
		return configError("num_inputs must be positive")
	}
	if gc.NumOutputs <= 0 {
		return configError("num_outputs must be positive")
	}
	if gc.NumHidden < 0 || gc.MaxHidden < 0 {
		return configError("num_hidden and max_hidden cannot be negative")
	}
	if gc.NumHidden > gc.MaxHidden {
		return configError(fmt.Sprintf("num_hidden (%d) exceeds max_hidden (%d)", gc.NumHidden, gc.MaxHidden))
	}
	if gc.CompatibilityDisjointCoefficient < 0 {
		return configError("compatibility_disjoint_coefficient cannot be negative")
	}
	if gc.CompatibilityWeightCoefficient < 0 {
		return configError("compatibility_weight_coefficient cannot be negative")
	}
	if gc.WeightInitStdev < 0 || gc.WeightMutatePower < 0 || gc.BiasMutatePower < 0 {
		return configError("weight_init_stdev, weight_mutate_power and bias_mutate_power cannot be negative")
	}
	if gc.WeightMaxValue < gc.WeightMinValue {
		return configError("weight_max_value cannot be less than weight_min_value")
	}
	if gc.BiasMaxValue < gc.BiasMinValue {
		return configError("bias_max_value cannot be less than bias_min_value")
	}
	if gc.ReenableProb < 0 || gc.ReenableProb > 1 {
		return configError("reenable_prob must be between 0 and 1")
	}

	total := 0.0
	for _, w := range gc.mutationWeights() {
		if w < 0 {
			return configError("mutation operator weights cannot be negative")
		}
		total += w
	}
	if total <= 0 {
		return configError("at least one mutation operator weight must be positive")
	}

	var err error
	if gc.OutputActivation, err = ParseActivation(gc.OutputActivationName); err != nil {
		return err
	}
	if gc.HiddenActivation, err = ParseActivation(gc.HiddenActivationName); err != nil {
		return err
	}
	if gc.HiddenAggregation, err = ParseAggregation(gc.HiddenAggregationName); err != nil {
		return err
	}
	return nil
}

// OutputWriter resolves the configured output stream name.
func (nc *NeatConfig) OutputWriter() (io.Writer, error) {
	switch strings.ToLower(nc.Output) {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "", "none":
		return io.Discard, nil
	default:
		return nil, configError(fmt.Sprintf("invalid output '%s', must be one of 'stdout', 'stderr', 'none'", nc.Output))
	}
}

func configError(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, msg)
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	// Remove comments starting with # or ;
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
