// Package channel defines the typed data links that connect pipeline
// components at definition time. A channel does not carry data itself; it
// records which node output produces a value and what cty type that value
// will have, so the builder can type-check bindings before anything runs.
package channel

import (
	"github.com/zclconf/go-cty/cty"
)

// Channel is a definition-time handle to a value produced by a pipeline
// node. Implementations must be comparable by pointer only; two channels
// describing the same output are still distinct handles.
type Channel interface {
	// Type is the cty type of the value the channel will carry.
	Type() cty.Type
	// Source is the ID of the producing node, or "" for externally
	// supplied values.
	Source() string
	// Ref is the name the pipeline author used to refer to this channel,
	// for diagnostics.
	Ref() string
}

// Output is a channel backed by a named output port of a node.
type Output struct {
	// NodeID is the graph ID of the producing node.
	NodeID string
	// Name is the output port name declared in the component manifest.
	Name string
	// ValueType is the declared cty type of the port.
	ValueType cty.Type
}

// NewOutput creates a channel for the named output port of a node.
func NewOutput(nodeID, name string, ty cty.Type) *Output {
	return &Output{NodeID: nodeID, Name: name, ValueType: ty}
}

// Type implements Channel.
func (o *Output) Type() cty.Type { return o.ValueType }

// Source implements Channel.
func (o *Output) Source() string { return o.NodeID }

// Ref implements Channel.
func (o *Output) Ref() string { return o.NodeID + "." + o.Name }

// ElementType reports the element type an iteration over a value of type ty
// would yield, and whether ty is iterable at all. Tuples iterate as their
// unified element type when one exists, otherwise as dynamic.
func ElementType(ty cty.Type) (cty.Type, bool) {
	switch {
	case ty.IsListType(), ty.IsSetType(), ty.IsMapType():
		return ty.ElementType(), true
	case ty.IsTupleType():
		etys := ty.TupleElementTypes()
		if len(etys) == 0 {
			return cty.DynamicPseudoType, true
		}
		unified := etys[0]
		for _, ety := range etys[1:] {
			if !ety.Equals(unified) {
				return cty.DynamicPseudoType, true
			}
		}
		return unified, true
	case ty.Equals(cty.DynamicPseudoType):
		// The author used `type = any`; iteration is checked at run time.
		return cty.DynamicPseudoType, true
	default:
		return cty.NilType, false
	}
}
