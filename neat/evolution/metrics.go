package evolution

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes per-generation run statistics to Prometheus. A nil
// *Metrics records nothing.
type Metrics struct {
	Generation         prometheus.Gauge
	Species            prometheus.Gauge
	BestFitness        *prometheus.GaugeVec
	GenomesEvaluated   prometheus.Counter
	SpeciesRemoved     *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
}

// NewMetrics creates the run metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "generation",
			Help:      "Generation currently being evolved.",
		}),
		Species: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "species",
			Help:      "Number of species after reclustering.",
		}),
		BestFitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "neat",
			Name:      "best_fitness",
			Help:      "Fitness of the champion and of the generation champion.",
		}, []string{"scope"}),
		GenomesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "neat",
			Name:      "genomes_evaluated_total",
			Help:      "Genomes passed to the evaluation function.",
		}),
		SpeciesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neat",
			Name:      "species_removed_total",
			Help:      "Species removed, by reason.",
		}, []string{"reason"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "neat",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of a full generation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{m.Generation, m.Species, m.BestFitness, m.GenomesEvaluated, m.SpeciesRemoved, m.GenerationDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) evaluated(n int) {
	if m == nil {
		return
	}
	m.GenomesEvaluated.Add(float64(n))
}

func (m *Metrics) removed(reason string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.SpeciesRemoved.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) generationDone(generation, species int, champion, generationChampion float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Generation.Set(float64(generation))
	m.Species.Set(float64(species))
	m.BestFitness.WithLabelValues("champion").Set(champion)
	m.BestFitness.WithLabelValues("generation").Set(generationChampion)
	m.GenerationDuration.Observe(elapsed.Seconds())
}
