package neat

import (
	"fmt"
	"math"
)

// EdgeKey identifies an edge by its endpoints. A genome holds at most one edge per key.
type EdgeKey struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", k.In, k.Out)
}

// Edge is a connection gene. Two edges are the same gene across genomes iff
// their innovation numbers match.
type Edge struct {
	In         int     `json:"in"`
	Out        int     `json:"out"`
	Weight     float64 `json:"weight"`
	Enabled    bool    `json:"enabled"`
	Innovation int     `json:"innovation"`
}

// NewEdge creates an enabled edge.
func NewEdge(in, out int, weight float64, innovation int) *Edge {
	return &Edge{
		In:         in,
		Out:        out,
		Weight:     weight,
		Enabled:    true,
		Innovation: innovation,
	}
}

// Key returns the endpoint pair of the edge.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{In: e.In, Out: e.Out}
}

// String returns a string representation of the Edge.
func (e *Edge) String() string {
	return fmt.Sprintf("Edge(%d->%d, Weight: %.3f, Enabled: %t, Innovation: %d)",
		e.In, e.Out, e.Weight, e.Enabled, e.Innovation)
}

// Copy creates a deep copy of the Edge.
func (e *Edge) Copy() *Edge {
	c := *e
	return &c
}

// weightDistance is the attribute distance between two matching edges.
func (e *Edge) weightDistance(other *Edge) float64 {
	return math.Abs(e.Weight - other.Weight)
}
