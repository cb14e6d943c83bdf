// Package node defines the definition-time representation of a pipeline
// component instance. Nodes are created exclusively by the builder while it
// walks the configuration model; the executor later treats them as the
// vertices of the dependency graph.
package node

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/channel"
)

// Node is a single component instance declared in a pipeline definition.
type Node struct {
	// ID is the unique graph identifier, "component.<type>.<name>".
	ID string
	// Name is the instance name from the definition.
	Name string
	// Type is the component type resolved against the registry.
	Type string

	// Arguments holds the raw argument expressions from the definition.
	Arguments map[string]hcl.Expression
	// DependsOn lists explicit dependencies as "<type>.<name>" references.
	DependsOn []string

	// Inputs maps declared input names to the channels bound to them by
	// the builder. Inputs bound to literal expressions have no entry here.
	Inputs map[string]channel.Channel
	// Outputs maps declared output names to the channels this node
	// produces.
	Outputs map[string]*channel.Output

	// DefRange locates the declaration in source, for diagnostics.
	DefRange hcl.Range
}

// New creates a bare node for an instance of the given component type.
func New(componentType, name string) *Node {
	return &Node{
		ID:      ID(componentType, name),
		Name:    name,
		Type:    componentType,
		Inputs:  make(map[string]channel.Channel),
		Outputs: make(map[string]*channel.Output),
	}
}

// ID builds the canonical graph identifier for a component instance.
func ID(componentType, name string) string {
	return fmt.Sprintf("component.%s.%s", componentType, name)
}

// AddOutput declares an output port and returns its channel.
func (n *Node) AddOutput(name string, ty cty.Type) *channel.Output {
	out := channel.NewOutput(n.ID, name, ty)
	n.Outputs[name] = out
	return out
}

// BindInput records that the named input is fed by the given channel.
func (n *Node) BindInput(name string, ch channel.Channel) {
	n.Inputs[name] = ch
}
