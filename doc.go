// Package neat provides a Go implementation of the NeuroEvolution of Augmenting Topologies (NEAT) algorithm.
//
// NEAT is a genetic algorithm for the generation of evolving artificial neural networks.
// It alters both the weighting parameters and structures of networks, attempting to find
// a balance between the fitness of evolved solutions and their diversity.
//
// Genomes are feed-forward graphs of nodes and edges. Edges never form a cycle, and every
// genome compiles into a layered network (package neat/nn) that the caller's evaluation
// function scores. Genomes are grouped into species by compatibility distance; each
// species breeds a share of the next generation proportional to its average fitness,
// and the shares always add up to the population size exactly.
//
// Packages:
//
//	neat             genomes, mutation, crossover, species, configuration
//	neat/nn          feed-forward network build and evaluation
//	neat/evolution   population and generation loop, checkpoints, metrics
//	neat/storage     SQLite and in-memory snapshot stores
//	neat/viz         Graphviz DOT output and fitness plots
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := evolution.NewPopulation(config)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Run until num_generations or fitness_goal from the config is reached
//	champion, err := pop.Run(ctx, func(ctx context.Context, net *nn.FeedForwardNetwork) (float64, error) {
//		out, err := net.Evaluate([]float64{1, 0})
//		if err != nil {
//			return 0, err
//		}
//		return out[0], nil
//	}, 0, nil)
package neat
