package neat

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Genome represents an individual organism in the population.
// Nodes and edges are kept in insertion order; lookups go through id indexes
// that are rebuilt whenever the structure changes.
type Genome struct {
	ID               int        `json:"id"`
	Nodes            []*Node    `json:"nodes"`
	Edges            []*Edge    `json:"edges"`
	Fitness          float64    `json:"fitness"`
	MaxHidden        int        `json:"max_hidden"`
	OutputActivation Activation `json:"output_activation"`

	config    *GenomeConfig
	nodeIndex map[int]int
	edgeIndex map[EdgeKey]int
}

// NewDefaultGenome creates a minimal genome: input and output nodes, the
// configured number of disconnected hidden nodes and no edges. Input ids are
// 0..NumInputs-1, output ids follow, hidden ids come last.
func NewDefaultGenome(id int, config *GenomeConfig) (*Genome, error) {
	if config.NumHidden > config.MaxHidden {
		return nil, fmt.Errorf("%w: num_hidden (%d) exceeds max_hidden (%d)", ErrConfiguration, config.NumHidden, config.MaxHidden)
	}
	g := &Genome{
		ID:               id,
		MaxHidden:        config.MaxHidden,
		OutputActivation: config.OutputActivation,
		config:           config,
	}

	nodeID := 0
	for i := 0; i < config.NumInputs; i++ {
		g.addNode(NewNode(nodeID, InputNode, Sum, Identity))
		nodeID++
	}
	for i := 0; i < config.NumOutputs; i++ {
		g.addNode(NewNode(nodeID, OutputNode, Sum, config.OutputActivation))
		nodeID++
	}
	for i := 0; i < config.NumHidden; i++ {
		g.addNode(NewNode(nodeID, HiddenNode, config.HiddenAggregation, config.HiddenActivation))
		nodeID++
	}
	return g, nil
}

// FirstFreeNodeID is the first node id not used by a default genome built from config.
func FirstFreeNodeID(config *GenomeConfig) int {
	return config.NumInputs + config.NumOutputs + config.NumHidden
}

// Config returns the genome configuration the genome mutates under.
func (g *Genome) Config() *GenomeConfig {
	return g.config
}

// Attach sets the genome configuration. Needed after decoding a genome,
// since the configuration is not part of a snapshot.
func (g *Genome) Attach(config *GenomeConfig) {
	g.config = config
}

// String returns a short summary of the genome.
func (g *Genome) String() string {
	enabled := 0
	for _, e := range g.Edges {
		if e.Enabled {
			enabled++
		}
	}
	return fmt.Sprintf("Genome(ID: %d, Fitness: %.4f, Nodes: %d (%d hidden), Edges: %d (%d enabled))",
		g.ID, g.Fitness, len(g.Nodes), g.NumHidden(), len(g.Edges), enabled)
}

// Copy creates a deep copy of the genome, including its id and fitness.
// The copy shares nothing mutable with g.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		ID:               g.ID,
		Nodes:            make([]*Node, len(g.Nodes)),
		Edges:            make([]*Edge, len(g.Edges)),
		Fitness:          g.Fitness,
		MaxHidden:        g.MaxHidden,
		OutputActivation: g.OutputActivation,
		config:           g.config,
	}
	for i, n := range g.Nodes {
		c.Nodes[i] = n.Copy()
	}
	for i, e := range g.Edges {
		c.Edges[i] = e.Copy()
	}
	c.reindex()
	return c
}

// Node returns the node with the given id, or nil.
func (g *Genome) Node(id int) *Node {
	g.ensureIndex()
	i, ok := g.nodeIndex[id]
	if !ok {
		return nil
	}
	return g.Nodes[i]
}

// Edge returns the edge in->out, or nil.
func (g *Genome) Edge(in, out int) *Edge {
	g.ensureIndex()
	i, ok := g.edgeIndex[EdgeKey{In: in, Out: out}]
	if !ok {
		return nil
	}
	return g.Edges[i]
}

// HasNode reports whether the genome holds a node with the given id.
func (g *Genome) HasNode(id int) bool {
	return g.Node(id) != nil
}

// NumHidden counts hidden nodes, enabled or not.
func (g *Genome) NumHidden() int {
	n := 0
	for _, node := range g.Nodes {
		if node.IsHidden() {
			n++
		}
	}
	return n
}

// InputIDs returns the input node ids in id order.
func (g *Genome) InputIDs() []int {
	return g.idsWithRole(InputNode)
}

// OutputIDs returns the output node ids in id order.
func (g *Genome) OutputIDs() []int {
	return g.idsWithRole(OutputNode)
}

func (g *Genome) idsWithRole(role NodeRole) []int {
	ids := []int{}
	for _, n := range g.Nodes {
		if n.Role == role {
			ids = append(ids, n.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// CompatibilityDistance measures how dissimilar two genomes are: the number of
// edges whose innovation number appears in only one genome, normalized by the
// larger edge count, plus the mean weight difference of matching edges.
func (g *Genome) CompatibilityDistance(other *Genome) float64 {
	cfg := g.settings()
	disjointCoefficient := cfg.CompatibilityDisjointCoefficient
	weightCoefficient := cfg.CompatibilityWeightCoefficient

	otherByInnovation := make(map[int]*Edge, len(other.Edges))
	for _, e := range other.Edges {
		otherByInnovation[e.Innovation] = e
	}

	disjointCount := 0
	matchingCount := 0
	weightDiffSum := 0.0
	for _, e := range g.Edges {
		if o, ok := otherByInnovation[e.Innovation]; ok {
			weightDiffSum += e.weightDistance(o)
			matchingCount++
		} else {
			disjointCount++
		}
	}
	// Edges of other without a match in g.
	disjointCount += len(other.Edges) - matchingCount

	// Normalize by the number of genes in the larger genome.
	n := float64(max(len(g.Edges), len(other.Edges)))
	if n < 1.0 {
		n = 1.0
	}

	distance := disjointCoefficient * float64(disjointCount) / n
	if matchingCount > 0 {
		distance += weightCoefficient * weightDiffSum / float64(matchingCount)
	}
	return distance
}

// IsAcyclic reports whether the full edge set, enabled or not, forms a DAG.
func (g *Genome) IsAcyclic() bool {
	_, err := topo.Sort(g.graph())
	return err == nil
}

// graph builds a directed graph over all nodes and edges.
func (g *Genome) graph() *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for _, n := range g.Nodes {
		dg.AddNode(simple.Node(n.ID))
	}
	for _, e := range g.Edges {
		if e.In == e.Out {
			// simple graphs reject self loops; they are never created anyway.
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(e.In), simple.Node(e.Out)))
	}
	return dg
}

// createsCycle reports whether adding in->out would close a cycle, i.e. out
// already reaches in.
func (g *Genome) createsCycle(dg *simple.DirectedGraph, in, out int) bool {
	if in == out {
		return true
	}
	return topo.PathExistsIn(dg, dg.Node(int64(out)), dg.Node(int64(in)))
}

func (g *Genome) addNode(n *Node) {
	g.ensureIndex()
	g.nodeIndex[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

func (g *Genome) addEdge(e *Edge) {
	g.ensureIndex()
	g.edgeIndex[e.Key()] = len(g.Edges)
	g.Edges = append(g.Edges, e)
}

// removeEdge deletes the edge in->out if present.
func (g *Genome) removeEdge(key EdgeKey) {
	g.Edges = slices.DeleteFunc(g.Edges, func(e *Edge) bool {
		return e.Key() == key
	})
	g.reindex()
}

// removeNode deletes a node and every edge touching it.
func (g *Genome) removeNode(id int) {
	g.Nodes = slices.DeleteFunc(g.Nodes, func(n *Node) bool {
		return n.ID == id
	})
	g.Edges = slices.DeleteFunc(g.Edges, func(e *Edge) bool {
		return e.In == id || e.Out == id
	})
	g.reindex()
}

func (g *Genome) ensureIndex() {
	if g.nodeIndex == nil || g.edgeIndex == nil || len(g.nodeIndex) != len(g.Nodes) || len(g.edgeIndex) != len(g.Edges) {
		g.reindex()
	}
}

func (g *Genome) reindex() {
	g.nodeIndex = make(map[int]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.edgeIndex = make(map[EdgeKey]int, len(g.Edges))
	for i, e := range g.Edges {
		g.edgeIndex[e.Key()] = i
	}
}
