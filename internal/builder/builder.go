// Package builder runs the definition pass: it turns the loaded config
// model into nodes connected by typed channels, drives the for_each block
// construct for every loop group, and reports author errors as HCL
// diagnostics with source ranges.
package builder

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/foreach"
	"github.com/weftworks/weft/internal/node"
	"github.com/weftworks/weft/internal/registry"
	"github.com/weftworks/weft/internal/scope"
)

// Result is the output of a successful definition pass.
type Result struct {
	// Nodes maps graph IDs to the declared nodes.
	Nodes map[string]*node.Node
	// Order lists nodes in declaration order.
	Order []*node.Node
	// Tracker retains the scope bookkeeping from the pass.
	Tracker *scope.Tracker
	// ScopeOf maps a node to the for_each scope it was declared in, if
	// any.
	ScopeOf map[*node.Node]*foreach.Scope
	// LoopVarOf maps a node in a for_each scope to the loop variable it
	// was bound against.
	LoopVarOf map[*node.Node]foreach.LoopVar
}

type build struct {
	model   *config.Model
	reg     *registry.Registry
	tracker *scope.Tracker
	result  *Result
	diags   hcl.Diagnostics
}

// Build runs the definition pass over a loaded model.
func Build(ctx context.Context, model *config.Model, reg *registry.Registry) (*Result, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Builder: definition pass started.")

	b := &build{
		model:   model,
		reg:     reg,
		tracker: scope.NewTracker(),
		result: &Result{
			Nodes:     make(map[string]*node.Node),
			ScopeOf:   make(map[*node.Node]*foreach.Scope),
			LoopVarOf: make(map[*node.Node]foreach.LoopVar),
		},
	}
	b.result.Tracker = b.tracker

	// First pass: declare all plain components so for_each collections
	// can reference their outputs regardless of file order.
	for _, c := range model.Pipeline.Components {
		b.declareComponent(c)
	}

	// Second pass: open each for_each block, declare its components with
	// the loop variable bound, and validate the block on close.
	for _, group := range model.Pipeline.ForEach {
		b.forEachGroup(ctx, group)
	}

	if b.diags.HasErrors() {
		return nil, b.diags
	}

	// Third pass: bind arguments to channels and type-check them.
	for _, n := range b.result.Order {
		b.linkArguments(n)
	}

	if b.diags.HasErrors() {
		return nil, b.diags
	}

	logger.Debug("Builder: definition pass finished.", "node_count", len(b.result.Nodes))
	return b.result, b.diags
}

// declareComponent creates the node for one component block and registers
// it with the scope tracker.
func (b *build) declareComponent(c *config.Component) *node.Node {
	def, ok := b.reg.Definition(c.Type)
	if !ok {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown component type",
			Detail:   fmt.Sprintf("No component_def manifest was loaded for type %q.", c.Type),
			Subject:  c.DefRange.Ptr(),
		})
		return nil
	}

	n := node.New(c.Type, c.Name)
	n.Arguments = c.Arguments
	n.DependsOn = c.DependsOn
	n.DefRange = c.DefRange

	if _, exists := b.result.Nodes[n.ID]; exists {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Duplicate component",
			Detail:   fmt.Sprintf("A component %q of type %q is already declared.", c.Name, c.Type),
			Subject:  c.DefRange.Ptr(),
		})
		return nil
	}

	for name, out := range def.Outputs {
		n.AddOutput(name, out.Type)
	}

	b.result.Nodes[n.ID] = n
	b.result.Order = append(b.result.Order, n)
	b.tracker.Declare(n)
	return n
}

// forEachGroup opens a for_each block for a group and declares its
// contents inside it. Structural violations surface as diagnostics
// anchored to the block's `in` expression.
func (b *build) forEachGroup(ctx context.Context, group *config.ForEachGroup) {
	loopable := b.resolveLoopable(group)
	if loopable == nil {
		return // diagnostics already recorded
	}

	err := foreach.Block(b.tracker, loopable, func(v foreach.LoopVar) error {
		for _, c := range group.Components {
			if n := b.declareComponent(c); n != nil {
				b.result.ScopeOf[n] = b.currentScope()
				b.result.LoopVarOf[n] = v
			}
		}
		for _, nested := range group.ForEach {
			b.forEachGroup(ctx, nested)
		}
		return nil
	})
	if err != nil {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid for_each block",
			Detail:   err.Error(),
			Subject:  group.DefRange.Ptr(),
		})
	}
}

// currentScope returns the innermost open for_each scope.
func (b *build) currentScope() *foreach.Scope {
	active := b.tracker.Active()
	for i := len(active) - 1; i >= 0; i-- {
		if s, ok := active[i].(*foreach.Scope); ok {
			return s
		}
	}
	return nil
}
