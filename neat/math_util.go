package neat

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// --- Statistical Functions ---
// All of them return 0 for an empty slice so species bookkeeping never sees NaN.

// Mean calculates the average of a slice of float64 values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(values, nil)
}

// Stdev calculates the sample standard deviation of a slice of float64 values.
func Stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	return stat.StdDev(values, nil)
}

// SumFloat calculates the sum of a slice of float64 values.
func SumFloat(values []float64) float64 {
	return floats.Sum(values)
}

// MaxFloat returns the largest value.
func MaxFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return floats.Max(values)
}

// MinFloat returns the smallest value.
func MinFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return floats.Min(values)
}

// Median calculates the median of a slice of float64 values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2.0
}

// StatFunctions maps function names to the actual statistical functions.
// Used to derive a species' fitness from its members.
var StatFunctions = map[string]func([]float64) float64{
	"max":    MaxFloat,
	"mean":   Mean,
	"median": Median,
	"min":    MinFloat,
	"sum":    SumFloat,
}
