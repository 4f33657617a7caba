package neat

import (
	"fmt"
	"math/rand"
)

// MutationOperator names one of the fixed mutation operators.
type MutationOperator int

const (
	WeightPerturb MutationOperator = iota
	WeightReset
	AddEdge
	RemoveEdge
	AddNode
	RemoveNode
	ToggleEdge
	ToggleNode
	BiasPerturb
)

var mutationOperatorNames = [...]string{
	WeightPerturb: "weight_perturb",
	WeightReset:   "weight_reset",
	AddEdge:       "add_edge",
	RemoveEdge:    "remove_edge",
	AddNode:       "add_node",
	RemoveNode:    "remove_node",
	ToggleEdge:    "toggle_edge",
	ToggleNode:    "toggle_node",
	BiasPerturb:   "bias_perturb",
}

func (op MutationOperator) String() string {
	if op < 0 || int(op) >= len(mutationOperatorNames) {
		return fmt.Sprintf("MutationOperator(%d)", int(op))
	}
	return mutationOperatorNames[op]
}

// mutationWeights returns the operator weights indexed by MutationOperator.
func (gc *GenomeConfig) mutationWeights() []float64 {
	return []float64{
		WeightPerturb: gc.WeightPerturbWeight,
		WeightReset:   gc.WeightResetWeight,
		AddEdge:       gc.AddEdgeWeight,
		RemoveEdge:    gc.RemoveEdgeWeight,
		AddNode:       gc.AddNodeWeight,
		RemoveNode:    gc.RemoveNodeWeight,
		ToggleEdge:    gc.ToggleEdgeWeight,
		ToggleNode:    gc.ToggleNodeWeight,
		BiasPerturb:   gc.BiasPerturbWeight,
	}
}

// RandomMutation applies exactly one operator, picked by roulette over the
// configured operator weights, and returns it. An operator that cannot apply
// to the genome leaves it unchanged.
func (g *Genome) RandomMutation(tr *Tracker) MutationOperator {
	weights := g.settings().mutationWeights()
	total := 0.0
	for _, w := range weights {
		total += w
	}

	op := BiasPerturb
	r := tr.Rand().Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			op = MutationOperator(i)
			break
		}
		r -= w
	}
	g.Mutate(op, tr)
	return op
}

// Mutate applies the given operator and reports whether the genome changed.
func (g *Genome) Mutate(op MutationOperator, tr *Tracker) bool {
	switch op {
	case WeightPerturb:
		return g.mutatePerturbWeight(tr.Rand())
	case WeightReset:
		return g.mutateResetWeight(tr.Rand())
	case AddEdge:
		return g.mutateAddEdge(tr)
	case RemoveEdge:
		return g.mutateRemoveEdge(tr.Rand())
	case AddNode:
		return g.mutateAddNode(tr)
	case RemoveNode:
		return g.mutateRemoveNode(tr.Rand())
	case ToggleEdge:
		return g.mutateToggleEdge(tr.Rand())
	case ToggleNode:
		return g.mutateToggleNode(tr.Rand())
	case BiasPerturb:
		return g.mutatePerturbBias(tr.Rand())
	default:
		return false
	}
}

func (g *Genome) mutatePerturbWeight(rng *rand.Rand) bool {
	if len(g.Edges) == 0 {
		return false
	}
	cfg := g.settings()
	e := g.Edges[rng.Intn(len(g.Edges))]
	e.Weight = clamp(e.Weight+rng.NormFloat64()*cfg.WeightMutatePower, cfg.WeightMinValue, cfg.WeightMaxValue)
	return true
}

func (g *Genome) mutateResetWeight(rng *rand.Rand) bool {
	if len(g.Edges) == 0 {
		return false
	}
	e := g.Edges[rng.Intn(len(g.Edges))]
	e.Weight = g.newWeight(rng)
	return true
}

// mutateAddEdge connects a random non-output source to a random non-input
// target, skipping existing edges and any edge that would close a cycle.
func (g *Genome) mutateAddEdge(tr *Tracker) bool {
	var candidates []EdgeKey
	for _, src := range g.Nodes {
		if src.IsOutput() {
			continue
		}
		for _, dst := range g.Nodes {
			if dst.IsInput() || src.ID == dst.ID {
				continue
			}
			if g.Edge(src.ID, dst.ID) != nil {
				continue
			}
			candidates = append(candidates, EdgeKey{In: src.ID, Out: dst.ID})
		}
	}
	if len(candidates) == 0 {
		return false
	}

	rng := tr.Rand()
	dg := g.graph()
	for _, i := range rng.Perm(len(candidates)) {
		key := candidates[i]
		if g.createsCycle(dg, key.In, key.Out) {
			continue
		}
		g.addEdge(NewEdge(key.In, key.Out, g.newWeight(rng), tr.Innovation(key.In, key.Out)))
		return true
	}
	return false
}

func (g *Genome) mutateRemoveEdge(rng *rand.Rand) bool {
	if len(g.Edges) == 0 {
		return false
	}
	e := g.Edges[rng.Intn(len(g.Edges))]
	g.removeEdge(e.Key())
	return true
}

// mutateAddNode splits a random enabled edge in->out into in->new->out. The
// incoming half gets weight 1 and the outgoing half keeps the old weight, so
// the split starts out close to the original behavior.
func (g *Genome) mutateAddNode(tr *Tracker) bool {
	if g.NumHidden() >= g.MaxHidden {
		return false
	}
	var enabled []*Edge
	for _, e := range g.Edges {
		if e.Enabled {
			enabled = append(enabled, e)
		}
	}
	if len(enabled) == 0 {
		return false
	}

	cfg := g.settings()
	old := enabled[tr.Rand().Intn(len(enabled))]
	id := tr.SplitNode(old.Innovation, g.HasNode)

	old.Enabled = false
	g.addNode(NewNode(id, HiddenNode, cfg.HiddenAggregation, cfg.HiddenActivation))
	g.addEdge(NewEdge(old.In, id, 1.0, tr.Innovation(old.In, id)))
	g.addEdge(NewEdge(id, old.Out, old.Weight, tr.Innovation(id, old.Out)))
	return true
}

func (g *Genome) mutateRemoveNode(rng *rand.Rand) bool {
	hidden := g.hiddenNodes()
	if len(hidden) == 0 {
		return false
	}
	g.removeNode(hidden[rng.Intn(len(hidden))].ID)
	return true
}

func (g *Genome) mutateToggleEdge(rng *rand.Rand) bool {
	if len(g.Edges) == 0 {
		return false
	}
	e := g.Edges[rng.Intn(len(g.Edges))]
	e.Enabled = !e.Enabled
	return true
}

func (g *Genome) mutateToggleNode(rng *rand.Rand) bool {
	hidden := g.hiddenNodes()
	if len(hidden) == 0 {
		return false
	}
	n := hidden[rng.Intn(len(hidden))]
	n.Enabled = !n.Enabled
	return true
}

// mutatePerturbBias perturbs the bias of a random hidden or output node.
// Input nodes pass their value through unchanged, so their bias is unused.
func (g *Genome) mutatePerturbBias(rng *rand.Rand) bool {
	var nodes []*Node
	for _, n := range g.Nodes {
		if !n.IsInput() {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		return false
	}
	cfg := g.settings()
	n := nodes[rng.Intn(len(nodes))]
	n.Bias = clamp(n.Bias+rng.NormFloat64()*cfg.BiasMutatePower, cfg.BiasMinValue, cfg.BiasMaxValue)
	return true
}

func (g *Genome) hiddenNodes() []*Node {
	var hidden []*Node
	for _, n := range g.Nodes {
		if n.IsHidden() {
			hidden = append(hidden, n)
		}
	}
	return hidden
}

func (g *Genome) newWeight(rng *rand.Rand) float64 {
	cfg := g.settings()
	return clamp(rng.NormFloat64()*cfg.WeightInitStdev+cfg.WeightInitMean, cfg.WeightMinValue, cfg.WeightMaxValue)
}

// settings returns the attached genome configuration, falling back to the
// defaults for a genome that was decoded without one.
func (g *Genome) settings() *GenomeConfig {
	if g.config == nil {
		g.config = &DefaultConfig(1, 1).Genome
	}
	return g.config
}
