package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of everything loaded from disk:
// component type definitions plus the user's pipeline.
type Model struct {
	Definitions map[string]*ComponentDefinition
	Pipeline    *Pipeline
}

// Pipeline is the format-agnostic representation of a pipeline file set.
type Pipeline struct {
	Components []*Component
	ForEach    []*ForEachGroup
}

// Component is the format-agnostic representation of a `component` block.
type Component struct {
	Type      string
	Name      string
	Arguments map[string]hcl.Expression
	DependsOn []string
	DefRange  hcl.Range
}

// ForEachGroup is the format-agnostic representation of a `for_each`
// block: the collection expression and the components declared inside.
// Nested groups are carried through so the builder can reject them with a
// proper diagnostic.
type ForEachGroup struct {
	In         hcl.Expression
	Components []*Component
	ForEach    []*ForEachGroup
	DefRange   hcl.Range
}

// ComponentDefinition is the format-agnostic representation of a component
// type manifest.
type ComponentDefinition struct {
	Type        string
	Description string
	Lifecycle   *Lifecycle
	Inputs      map[string]*InputDefinition
	Outputs     map[string]*OutputDefinition
}

// Lifecycle maps a component's events to Go handler names.
type Lifecycle struct {
	OnRun string
}

// InputDefinition defines a single input argument for a component type.
type InputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
	Default     *cty.Value
	Optional    bool
}

// OutputDefinition defines a single output value from a component type.
type OutputDefinition struct {
	Name        string
	Type        cty.Type
	Description string
}
