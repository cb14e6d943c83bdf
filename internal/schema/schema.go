// Package schema defines the HCL shapes for pipeline files and component
// manifests. The hcl loader decodes into these structs and translates them
// to the format-agnostic config model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// --- Pipeline file structures ---

// Arguments represents the content of the 'arguments' block within a
// component.
type Arguments struct {
	Body hcl.Body `hcl:",remain"`
}

// Component represents a `component` block from a user's pipeline file. It
// is an instance of a defined component type.
type Component struct {
	Type      string     `hcl:"component_type,label"`
	Name      string     `hcl:"instance_name,label"`
	Arguments *Arguments `hcl:"arguments,block"`
	DependsOn []string   `hcl:"depends_on,optional"`
}

// ForEach represents a `for_each` block. The `in` attribute names the
// collection to iterate; the block body declares the components run per
// element. Nested for_each blocks decode fine here; rejecting them is the
// builder's job, so the author gets a validation diagnostic rather than a
// parse error.
type ForEach struct {
	In         hcl.Expression `hcl:"in"`
	Components []*Component   `hcl:"component,block"`
	ForEach    []*ForEach     `hcl:"for_each,block"`
}

// PipelineConfig represents the top-level structure of a pipeline file.
type PipelineConfig struct {
	Components []*Component `hcl:"component,block"`
	ForEach    []*ForEach   `hcl:"for_each,block"`
	Body       hcl.Body     `hcl:",remain"`
}

// --- Component manifest structures ---

// Lifecycle maps a component's lifecycle events to registered Go handlers.
type Lifecycle struct {
	OnRun string `hcl:"on_run,optional"`
}

// InputDefinition defines a single input for a component type.
type InputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
	Default     *cty.Value     `hcl:"default,optional"`
}

// OutputDefinition defines a single output produced by a component type.
type OutputDefinition struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Description string         `hcl:"description,optional"`
}

// ComponentDefinition represents the HCL manifest for a component type.
type ComponentDefinition struct {
	Type        string              `hcl:"type,label"`
	Description string              `hcl:"description,optional"`
	Lifecycle   *Lifecycle          `hcl:"lifecycle,block"`
	Inputs      []*InputDefinition  `hcl:"input,block"`
	Outputs     []*OutputDefinition `hcl:"output,block"`
}

// DefinitionConfig represents the top-level structure of a manifest file.
type DefinitionConfig struct {
	Component *ComponentDefinition `hcl:"component_def,block"`
	Body      hcl.Body             `hcl:",remain"`
}
