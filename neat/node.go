package neat

import (
	"fmt"
	"math/rand"
)

// NodeRole tags a node as input, hidden or output.
type NodeRole int

const (
	InputNode NodeRole = iota
	HiddenNode
	OutputNode
)

var nodeRoleNames = [...]string{
	InputNode:  "input",
	HiddenNode: "hidden",
	OutputNode: "output",
}

func (r NodeRole) String() string {
	if r < 0 || int(r) >= len(nodeRoleNames) {
		return fmt.Sprintf("NodeRole(%d)", int(r))
	}
	return nodeRoleNames[r]
}

// MarshalText encodes the role by name.
func (r NodeRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *NodeRole) UnmarshalText(text []byte) error {
	for i, n := range nodeRoleNames {
		if n == string(text) {
			*r = NodeRole(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown node role: %s", ErrConfiguration, text)
}

// Node is a neuron gene. Its ID is unique within a genome and never reused.
type Node struct {
	ID          int         `json:"id"`
	Role        NodeRole    `json:"role"`
	Aggregation Aggregation `json:"aggregation"`
	Activation  Activation  `json:"activation"`
	Bias        float64     `json:"bias"`
	Enabled     bool        `json:"enabled"`
}

// NewNode creates an enabled node with zero bias.
func NewNode(id int, role NodeRole, aggregation Aggregation, activation Activation) *Node {
	return &Node{
		ID:          id,
		Role:        role,
		Aggregation: aggregation,
		Activation:  activation,
		Enabled:     true,
	}
}

// String returns a string representation of the Node.
func (n *Node) String() string {
	return fmt.Sprintf("Node(ID: %d, Role: %s, Bias: %.3f, Activation: %s, Aggregation: %s, Enabled: %t)",
		n.ID, n.Role, n.Bias, n.Activation, n.Aggregation, n.Enabled)
}

// Copy creates a deep copy of the Node.
func (n *Node) Copy() *Node {
	c := *n
	return &c
}

// IsInput reports whether the node is an input node.
func (n *Node) IsInput() bool { return n.Role == InputNode }

// IsOutput reports whether the node is an output node.
func (n *Node) IsOutput() bool { return n.Role == OutputNode }

// IsHidden reports whether the node is a hidden node.
func (n *Node) IsHidden() bool { return n.Role == HiddenNode }

// crossover creates a child node by randomly inheriting attributes from n and other.
// Identity and role always come from n.
func (n *Node) crossover(other *Node, rng *rand.Rand) *Node {
	child := n.Copy()
	if rng.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	if rng.Float64() < 0.5 {
		child.Aggregation = other.Aggregation
	}
	if rng.Float64() < 0.5 {
		child.Activation = other.Activation
	}
	if rng.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}
	return child
}
