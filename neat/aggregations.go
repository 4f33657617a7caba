package neat

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Aggregation identifies how a node combines its weighted inputs.
type Aggregation int

const (
	Sum Aggregation = iota
	Min
	Max
)

// AggregationFunc combines weighted inputs. Every function returns 0 for no inputs.
type AggregationFunc func(inputs []float64) float64

var aggregationFunctions = [...]AggregationFunc{
	Sum: aggregateSum,
	Min: aggregateMin,
	Max: aggregateMax,
}

var aggregationNames = [...]string{
	Sum: "sum",
	Min: "min",
	Max: "max",
}

// Apply aggregates inputs.
func (a Aggregation) Apply(inputs []float64) float64 {
	return aggregationFunctions[a](inputs)
}

// Valid reports whether a names a known aggregation.
func (a Aggregation) Valid() bool {
	return a >= 0 && int(a) < len(aggregationFunctions)
}

func (a Aggregation) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Aggregation(%d)", int(a))
	}
	return aggregationNames[a]
}

// MarshalText encodes the aggregation by name.
func (a Aggregation) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: unknown aggregation %d", ErrConfiguration, int(a))
	}
	return []byte(aggregationNames[a]), nil
}

// UnmarshalText decodes an aggregation name.
func (a *Aggregation) UnmarshalText(text []byte) error {
	parsed, err := ParseAggregation(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAggregation looks up an aggregation by name.
func ParseAggregation(name string) (Aggregation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range aggregationNames {
		if n == name {
			return Aggregation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown aggregation function: %s", ErrConfiguration, name)
}

func aggregateSum(inputs []float64) float64 {
	return floats.Sum(inputs)
}

func aggregateMin(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	return floats.Min(inputs)
}

func aggregateMax(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0
	}
	return floats.Max(inputs)
}
