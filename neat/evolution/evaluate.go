package evolution

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// evaluate scores every network with up to Workers goroutines. The first
// callback error cancels the remaining evaluations and is returned.
func (p *Population) evaluate(ctx context.Context, eval EvaluationFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	workers := p.Config.Neat.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	generation := p.Generation
	cp := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, net := range p.Networks {
		cp.Go(func(ctx context.Context) error {
			fitness, err := eval(ctx, net)
			if err != nil {
				return fmt.Errorf("generation %d: genome %d: %w", generation, net.Genome.ID, err)
			}
			net.Genome.Fitness = fitness
			return nil
		})
	}
	return cp.Wait()
}
