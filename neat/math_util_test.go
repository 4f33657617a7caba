package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatFunctions(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	cases := map[string]float64{
		"max":    4,
		"mean":   2.5,
		"median": 2.5,
		"min":    1,
		"sum":    10,
	}
	for name, want := range cases {
		fn, ok := StatFunctions[name]
		if assert.True(t, ok, name) {
			assert.InDelta(t, want, fn(values), 1e-12, name)
		}
	}

	for name, fn := range StatFunctions {
		assert.Zero(t, fn(nil), name)
	}
	assert.Zero(t, Stdev([]float64{3}))
	assert.Equal(t, 6.0, SumFloat([]float64{1, 2, 3}))
}
