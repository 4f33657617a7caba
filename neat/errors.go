package neat

import "errors"

// Error categories. Callers match them with errors.Is; the concrete error
// carries the detail.
var (
	// ErrConfiguration reports invalid or missing configuration, including
	// snapshots that do not match the current schema or genome shape.
	ErrConfiguration = errors.New("configuration error")

	// ErrInputShape reports an evaluation input vector of the wrong length.
	ErrInputShape = errors.New("input shape error")

	// ErrStructuralInvariant reports a corrupted genome graph, e.g. a cycle
	// found while layering a network.
	ErrStructuralInvariant = errors.New("structural invariant violated")

	// ErrAllocation reports an offspring allocation that does not sum to the
	// population size.
	ErrAllocation = errors.New("offspring allocation error")
)
