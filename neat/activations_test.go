package neat

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivations(t *testing.T) {
	tests := []struct {
		act  Activation
		in   float64
		want float64
	}{
		{Identity, -2.5, -2.5},
		{ReLU, -1, 0},
		{ReLU, 2, 2},
		{LeakyReLU, -1, -0.01},
		{Step, 0, 0},
		{Step, 0.1, 1},
		{Step, -0.1, 0},
		{BinaryStep, 0, 1},
		{BinaryStep, -0.1, 0},
		{Sigmoid, 0, 0.5},
		{Logistic, 0, 0.5},
		{Tanh, 0, 0},
		{ArcTan, 0, 0},
		{Softplus, 0, math.Log(2)},
	}
	for _, tc := range tests {
		assert.InDelta(t, tc.want, tc.act.Apply(tc.in), 1e-9, "%s(%v)", tc.act, tc.in)
	}

	// The sigmoid is steepened, so it saturates well before the logistic.
	assert.Greater(t, Sigmoid.Apply(1), Logistic.Apply(1))
	assert.InDelta(t, 1, Sigmoid.Apply(100), 1e-9)
	assert.InDelta(t, 0, Sigmoid.Apply(-100), 1e-9)
}

func TestParseActivation(t *testing.T) {
	for i := range activationNames {
		a := Activation(i)
		parsed, err := ParseActivation(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	parsed, err := ParseActivation(" LeLU ")
	require.NoError(t, err)
	assert.Equal(t, LeakyReLU, parsed)

	_, err = ParseActivation("wobble")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestActivationJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Activation  `json:"a"`
		G Aggregation `json:"g"`
	}{Tanh, Max})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "tanh", "g": "max"}`, string(data))

	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "role": "hidden", "aggregation": "min", "activation": "relu"}`), &n))
	assert.Equal(t, HiddenNode, n.Role)
	assert.Equal(t, Min, n.Aggregation)
	assert.Equal(t, ReLU, n.Activation)

	assert.Error(t, json.Unmarshal([]byte(`{"activation": "wobble"}`), &n))
}

func TestAggregations(t *testing.T) {
	in := []float64{3, -1, 2}
	assert.Equal(t, 4.0, Sum.Apply(in))
	assert.Equal(t, -1.0, Min.Apply(in))
	assert.Equal(t, 3.0, Max.Apply(in))
	for _, a := range []Aggregation{Sum, Min, Max} {
		assert.Zero(t, a.Apply(nil), a.String())
	}
}
