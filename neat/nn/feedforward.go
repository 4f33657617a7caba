package nn

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/ffneat/neat"
)

// NoLayer marks a node that takes no part in evaluation: it is disabled,
// unreachable from every input, or reaches no output.
const NoLayer = -1

// Connection is an enabled edge between two evaluated nodes.
type Connection struct {
	In     int
	Out    int
	Weight float64
}

// Node is a network node with its assigned layer. Inputs sit on layer 0 and
// every other evaluated node sits one layer past its deepest source.
type Node struct {
	ID          int
	Role        neat.NodeRole
	Layer       int
	Aggregation neat.Aggregation
	Activation  neat.Activation
	Bias        float64
	Incoming    []Connection
}

// FeedForwardNetwork is the evaluable form of a genome. It is never mutated
// after Build; a changed genome gets a new network.
type FeedForwardNetwork struct {
	Genome    *neat.Genome
	InputIDs  []int
	OutputIDs []int
	Nodes     []*Node // every genome node in id order, layered or not
	NumLayers int

	evalOrder []*Node // evaluated non-input nodes in (layer, id) order
}

// Build lays out g as a feed-forward network. Only enabled edges between
// enabled nodes are considered. A cycle among them is reported as
// neat.ErrStructuralInvariant.
func Build(g *neat.Genome) (*FeedForwardNetwork, error) {
	net := &FeedForwardNetwork{
		Genome:    g,
		InputIDs:  g.InputIDs(),
		OutputIDs: g.OutputIDs(),
	}

	active := make(map[int]*Node, len(g.Nodes))
	dg := simple.NewDirectedGraph()
	for _, gn := range g.Nodes {
		n := &Node{
			ID:          gn.ID,
			Role:        gn.Role,
			Layer:       NoLayer,
			Aggregation: gn.Aggregation,
			Activation:  gn.Activation,
			Bias:        gn.Bias,
		}
		net.Nodes = append(net.Nodes, n)
		if gn.Enabled || gn.IsInput() {
			active[gn.ID] = n
			dg.AddNode(simple.Node(gn.ID))
		}
	}
	slices.SortFunc(net.Nodes, func(a, b *Node) int { return a.ID - b.ID })

	weights := make(map[neat.EdgeKey]float64)
	for _, e := range g.Edges {
		if !e.Enabled || e.In == e.Out {
			continue
		}
		if active[e.In] == nil || active[e.Out] == nil {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(e.In), simple.Node(e.Out)))
		weights[e.Key()] = e.Weight
	}

	sorted, err := topo.Sort(dg)
	if err != nil {
		return nil, fmt.Errorf("%w: genome %d: enabled edges form a cycle: %v", neat.ErrStructuralInvariant, g.ID, err)
	}

	// Longest path from any input, following the topological order.
	for _, gn := range sorted {
		n := active[int(gn.ID())]
		if n.Role == neat.InputNode {
			n.Layer = 0
			continue
		}
		preds := dg.To(gn.ID())
		for preds.Next() {
			src := active[int(preds.Node().ID())]
			if src.Layer != NoLayer && src.Layer+1 > n.Layer {
				n.Layer = src.Layer + 1
			}
		}
	}

	// Drop nodes that cannot influence an output.
	reachesOutput := make(map[int]bool, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		id := int(sorted[i].ID())
		n := active[id]
		reaches := n.Role == neat.OutputNode
		succs := dg.From(sorted[i].ID())
		for !reaches && succs.Next() {
			reaches = reachesOutput[int(succs.Node().ID())]
		}
		reachesOutput[id] = reaches
		if !reaches && n.Role != neat.InputNode {
			n.Layer = NoLayer
		}
	}

	for _, n := range net.Nodes {
		if n.Layer == NoLayer || n.Role == neat.InputNode {
			continue
		}
		preds := dg.To(int64(n.ID))
		for preds.Next() {
			src := active[int(preds.Node().ID())]
			if src.Layer == NoLayer {
				continue
			}
			n.Incoming = append(n.Incoming, Connection{In: src.ID, Out: n.ID, Weight: weights[neat.EdgeKey{In: src.ID, Out: n.ID}]})
		}
		// Sum aggregation is order sensitive in floating point.
		slices.SortFunc(n.Incoming, func(a, b Connection) int { return a.In - b.In })
		net.evalOrder = append(net.evalOrder, n)
		net.NumLayers = max(net.NumLayers, n.Layer+1)
	}
	slices.SortStableFunc(net.evalOrder, func(a, b *Node) int { return a.Layer - b.Layer })
	if net.NumLayers == 0 && len(net.InputIDs) > 0 {
		net.NumLayers = 1
	}
	return net, nil
}

// Evaluate runs inputs through the network and returns the output values in
// output id order. An output node that takes no part in evaluation yields 0.
func (net *FeedForwardNetwork) Evaluate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputIDs) {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d", neat.ErrInputShape, len(inputs), len(net.InputIDs))
	}

	values := make(map[int]float64, len(net.Nodes))
	for i, id := range net.InputIDs {
		values[id] = inputs[i]
	}

	var weighted []float64
	for _, n := range net.evalOrder {
		weighted = weighted[:0]
		for _, c := range n.Incoming {
			weighted = append(weighted, values[c.In]*c.Weight)
		}
		values[n.ID] = n.Activation.Apply(n.Bias + n.Aggregation.Apply(weighted))
	}

	outputs := make([]float64, len(net.OutputIDs))
	for i, id := range net.OutputIDs {
		outputs[i] = values[id]
	}
	return outputs, nil
}

// Node returns the network node with the given id, or nil.
func (net *FeedForwardNetwork) Node(id int) *Node {
	i, ok := slices.BinarySearchFunc(net.Nodes, id, func(n *Node, id int) int { return n.ID - id })
	if !ok {
		return nil
	}
	return net.Nodes[i]
}

// Layers groups evaluated node ids by layer.
func (net *FeedForwardNetwork) Layers() [][]int {
	layers := make([][]int, net.NumLayers)
	for _, n := range net.Nodes {
		if n.Layer != NoLayer {
			layers[n.Layer] = append(layers[n.Layer], n.ID)
		}
	}
	return layers
}
