package neat

import (
	"fmt"
	"math"
	"strings"
)

// Activation identifies the function a node applies after aggregation and bias.
type Activation int

const (
	ArcTan Activation = iota
	BinaryStep
	Identity
	LeakyReLU
	Logistic
	ReLU
	Sigmoid
	Softplus
	Step
	Tanh
)

// ActivationFunc is the numeric contract every activation satisfies.
type ActivationFunc func(x float64) float64

// activationFunctions is indexed by Activation.
var activationFunctions = [...]ActivationFunc{
	ArcTan:     arcTan,
	BinaryStep: binaryStep,
	Identity:   identity,
	LeakyReLU:  leakyReLU,
	Logistic:   logistic,
	ReLU:       relu,
	Sigmoid:    sigmoid,
	Softplus:   softplus,
	Step:       step,
	Tanh:       math.Tanh,
}

var activationNames = [...]string{
	ArcTan:     "arctan",
	BinaryStep: "binary_step",
	Identity:   "identity",
	LeakyReLU:  "leaky_relu",
	Logistic:   "logistic",
	ReLU:       "relu",
	Sigmoid:    "sigmoid",
	Softplus:   "softplus",
	Step:       "step",
	Tanh:       "tanh",
}

// Apply runs the activation on x.
func (a Activation) Apply(x float64) float64 {
	return activationFunctions[a](x)
}

// Valid reports whether a names a known activation.
func (a Activation) Valid() bool {
	return a >= 0 && int(a) < len(activationFunctions)
}

func (a Activation) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Activation(%d)", int(a))
	}
	return activationNames[a]
}

// MarshalText encodes the activation by name for JSON and YAML.
func (a Activation) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: unknown activation %d", ErrConfiguration, int(a))
	}
	return []byte(activationNames[a]), nil
}

// UnmarshalText decodes an activation name.
func (a *Activation) UnmarshalText(text []byte) error {
	parsed, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseActivation looks up an activation by name. "lelu" is accepted as an
// alias of leaky_relu.
func ParseActivation(name string) (Activation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "lelu" {
		return LeakyReLU, nil
	}
	for i, n := range activationNames {
		if n == name {
			return Activation(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown activation function: %s", ErrConfiguration, name)
}

func arcTan(x float64) float64 {
	return math.Atan(x)
}

// binaryStep fires on non-negative input.
func binaryStep(x float64) float64 {
	if x >= 0 {
		return 1
	}
	return 0
}

func identity(x float64) float64 {
	return x
}

func leakyReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0.01 * x
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func relu(x float64) float64 {
	return math.Max(0, x)
}

// sigmoid is the steepened logistic used by NEAT (slope 4.9).
func sigmoid(x float64) float64 {
	k := 4.9
	return 1.0 / (1.0 + math.Exp(-k*clamp(x, -60, 60)))
}

func softplus(x float64) float64 {
	// log1p(exp(x)) overflows for large x, where softplus(x) ~ x.
	if x > 30 {
		return x
	}
	return math.Log1p(math.Exp(x))
}

// step fires on strictly positive input.
func step(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}
