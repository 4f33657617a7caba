// Package viz renders genomes, networks and run histories. It only reads
// the values it is given.
package viz

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/baldhumanity/ffneat/neat"
	"github.com/baldhumanity/ffneat/neat/nn"
)

const fontSize = "9"

type attributes []encoding.Attribute

func (a attributes) Attributes() []encoding.Attribute { return a }

type dotNode struct {
	id    int64
	attrs attributes
}

func (n dotNode) ID() int64                        { return n.id }
func (n dotNode) Attributes() []encoding.Attribute { return n.attrs }

type dotEdge struct {
	from, to graph.Node
	attrs    attributes
}

func (e dotEdge) From() graph.Node                 { return e.from }
func (e dotEdge) To() graph.Node                   { return e.to }
func (e dotEdge) ReversedEdge() graph.Edge         { return dotEdge{from: e.to, to: e.from, attrs: e.attrs} }
func (e dotEdge) Attributes() []encoding.Attribute { return e.attrs }

type dotGraph struct {
	*simple.DirectedGraph
	graphAttrs attributes
}

func (g dotGraph) DOTAttributers() (graphAttrs, nodeAttrs, edgeAttrs encoding.Attributer) {
	nodeDefaults := attributes{
		{Key: "shape", Value: "circle"},
		{Key: "fontsize", Value: fontSize},
		{Key: "height", Value: "0.2"},
		{Key: "width", Value: "0.2"},
	}
	edgeDefaults := attributes{{Key: "fontsize", Value: fontSize}}
	return g.graphAttrs, nodeDefaults, edgeDefaults
}

func newDOTGraph() dotGraph {
	return dotGraph{
		DirectedGraph: simple.NewDirectedGraph(),
		graphAttrs:    attributes{{Key: "rankdir", Value: "LR"}},
	}
}

// WriteGenomeDOT writes g in Graphviz DOT form: every node and edge,
// disabled ones dashed.
func WriteGenomeDOT(w io.Writer, g *neat.Genome) error {
	dg := newDOTGraph()
	nodes := make(map[int]dotNode, len(g.Nodes))
	for _, n := range g.Nodes {
		attrs := nodeAttributes(n.Role, n.Aggregation, n.Activation, n.Bias, "")
		if !n.Enabled {
			attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dashed"})
		}
		dn := dotNode{id: int64(n.ID), attrs: attrs}
		nodes[n.ID] = dn
		dg.AddNode(dn)
	}
	for _, e := range g.Edges {
		from, okFrom := nodes[e.In]
		to, okTo := nodes[e.Out]
		if !okFrom || !okTo || e.In == e.Out {
			continue
		}
		style := "solid"
		if !e.Enabled {
			style = "dashed"
		}
		dg.SetEdge(dotEdge{from: from, to: to, attrs: edgeAttributes(e.Weight, style)})
	}
	return marshal(w, dg, fmt.Sprintf("genome_%d", g.ID))
}

// WriteNetworkDOT writes net in Graphviz DOT form with each node labeled by
// its layer. Nodes without a layer are drawn dotted and only evaluated
// connections are drawn.
func WriteNetworkDOT(w io.Writer, net *nn.FeedForwardNetwork) error {
	dg := newDOTGraph()
	nodes := make(map[int]dotNode, len(net.Nodes))
	for _, n := range net.Nodes {
		layer := "-"
		if n.Layer != nn.NoLayer {
			layer = fmt.Sprint(n.Layer)
		}
		attrs := nodeAttributes(n.Role, n.Aggregation, n.Activation, n.Bias, layer)
		if n.Layer == nn.NoLayer {
			attrs = append(attrs, encoding.Attribute{Key: "style", Value: "dotted"})
		}
		dn := dotNode{id: int64(n.ID), attrs: attrs}
		nodes[n.ID] = dn
		dg.AddNode(dn)
	}
	for _, n := range net.Nodes {
		for _, c := range n.Incoming {
			dg.SetEdge(dotEdge{from: nodes[c.In], to: nodes[c.Out], attrs: edgeAttributes(c.Weight, "solid")})
		}
	}
	return marshal(w, dg, fmt.Sprintf("network_%d", net.Genome.ID))
}

func marshal(w io.Writer, g dotGraph, name string) error {
	b, err := dot.Marshal(g, name, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func nodeAttributes(role neat.NodeRole, agg neat.Aggregation, act neat.Activation, bias float64, layer string) attributes {
	label := fmt.Sprintf("%s, %.1f\n%s", agg, bias, act)
	if layer != "" {
		label = layer + "\n" + label
	}
	attrs := attributes{{Key: "label", Value: label}}
	if role != neat.HiddenNode {
		attrs = append(attrs, encoding.Attribute{Key: "color", Value: "red"})
	}
	return attrs
}

func edgeAttributes(weight float64, style string) attributes {
	color := "grey"
	if weight > 0 {
		color = "black"
	}
	return attributes{
		{Key: "label", Value: fmt.Sprintf("%.2f", weight)},
		{Key: "color", Value: color},
		{Key: "style", Value: style},
		{Key: "penwidth", Value: fmt.Sprintf("%.2f", 0.1+math.Abs(weight/5.0))},
	}
}
