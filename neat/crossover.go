package neat

// Crossover creates a child from g and other. The fitter parent (g on a tie)
// supplies the structure: every node and edge of the child exists in the
// fitter parent, and genes only the weaker parent carries are never
// inherited. Matching edges take their weight from a random parent; a
// matching edge disabled in either parent is enabled in the child with
// probability ReenableProb.
func (g *Genome) Crossover(other *Genome, tr *Tracker) *Genome {
	fitter, weaker := g, other
	if other.Fitness > g.Fitness {
		fitter, weaker = other, g
	}

	rng := tr.Rand()
	cfg := fitter.settings()
	child := &Genome{
		ID:               tr.GenomeID(),
		Nodes:            make([]*Node, 0, len(fitter.Nodes)),
		Edges:            make([]*Edge, 0, len(fitter.Edges)),
		MaxHidden:        fitter.MaxHidden,
		OutputActivation: fitter.OutputActivation,
		config:           cfg,
	}

	weakerEdges := make(map[int]*Edge, len(weaker.Edges))
	for _, e := range weaker.Edges {
		weakerEdges[e.Innovation] = e
	}

	for _, e := range fitter.Edges {
		inherited := e.Copy()
		if o, ok := weakerEdges[e.Innovation]; ok {
			if rng.Float64() < 0.5 {
				inherited.Weight = o.Weight
			}
			if !e.Enabled || !o.Enabled {
				inherited.Enabled = rng.Float64() < cfg.ReenableProb
			}
		}
		child.Edges = append(child.Edges, inherited)
	}

	for _, n := range fitter.Nodes {
		if o := weaker.Node(n.ID); o != nil && o.Role == n.Role {
			child.Nodes = append(child.Nodes, n.crossover(o, rng))
		} else {
			child.Nodes = append(child.Nodes, n.Copy())
		}
	}

	child.reindex()
	return child
}
