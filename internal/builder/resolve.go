// This file resolves references in argument and for_each expressions into
// channels, and type-checks the resulting bindings.

package builder

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/foreach"
	"github.com/weftworks/weft/internal/node"
	"github.com/weftworks/weft/internal/typeutil"
)

// resolveLoopable turns a for_each `in` expression into a Loopable. On
// failure it records diagnostics and returns nil.
func (b *build) resolveLoopable(group *config.ForEachGroup) *foreach.Loopable {
	expr := group.In

	// A single channel reference: `in = component.gen.items`.
	if tv, ok := exprTraversal(expr); ok {
		ch := b.channelForTraversal(tv, group.DefRange)
		if ch == nil {
			return nil
		}
		loopable, err := foreach.FromChannel(ch)
		if err != nil {
			b.loopableDiag(err, group.DefRange)
			return nil
		}
		return loopable
	}

	// The map-of-channels form: `in = { a = component.x.out, ... }`.
	if obj, ok := expr.(*hclsyntax.ObjectConsExpr); ok {
		channels := make(map[string]channel.Channel, len(obj.Items))
		for _, item := range obj.Items {
			key, diags := item.KeyExpr.Value(nil)
			if diags.HasErrors() || key.IsNull() {
				b.diags = append(b.diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid for_each collection",
					Detail:   "Keys in a for_each object must be static strings.",
					Subject:  item.KeyExpr.Range().Ptr(),
				})
				return nil
			}
			tv, ok := exprTraversal(item.ValueExpr)
			if !ok {
				b.diags = append(b.diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid for_each collection",
					Detail:   "Values in a for_each object must be channel references.",
					Subject:  item.ValueExpr.Range().Ptr(),
				})
				return nil
			}
			ch := b.channelForTraversal(tv, item.ValueExpr.Range())
			if ch == nil {
				return nil
			}
			channels[key.AsString()] = ch
		}
		loopable, err := foreach.FromChannelMap(channels)
		if err != nil {
			b.loopableDiag(err, group.DefRange)
			return nil
		}
		return loopable
	}

	// A literal collection: `in = ["a", "b"]`. Parse-time checks already
	// confirmed the shape; wrap the value in a literal channel.
	if len(expr.Variables()) == 0 {
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			b.diags = append(b.diags, diags...)
			return nil
		}
		loopable, err := foreach.FromChannel(channel.NewLiteral(val, "for_each literal"))
		if err != nil {
			b.loopableDiag(err, group.DefRange)
			return nil
		}
		return loopable
	}

	b.diags = append(b.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid for_each collection",
		Detail:   "The 'in' attribute must be a channel reference, an object of channel references, or a literal collection.",
		Subject:  group.DefRange.Ptr(),
	})
	return nil
}

// loopableDiag converts a foreach construction error into a diagnostic.
func (b *build) loopableDiag(err error, rng hcl.Range) {
	b.diags = append(b.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Invalid for_each block",
		Detail:   err.Error(),
		Subject:  rng.Ptr(),
	})
}

// channelForTraversal resolves a `component.<type>.<name>[.<output>]`
// traversal into the referenced output channel. Records diagnostics and
// returns nil on failure.
func (b *build) channelForTraversal(tv hcl.Traversal, rng hcl.Range) channel.Channel {
	parts := traversalParts(tv)
	if len(parts) == 0 {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   "A reference must name a component output.",
			Subject:  rng.Ptr(),
		})
		return nil
	}
	if parts[0] != "component" {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   fmt.Sprintf("Unknown reference root %q; only component outputs can be referenced.", parts[0]),
			Subject:  rng.Ptr(),
		})
		return nil
	}
	if len(parts) < 3 {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   "Component references have the form component.<type>.<name>.<output>.",
			Subject:  rng.Ptr(),
		})
		return nil
	}

	id := node.ID(parts[1], parts[2])
	n, ok := b.result.Nodes[id]
	if !ok {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Reference to undeclared component",
			Detail:   fmt.Sprintf("No component %q of type %q is declared in this pipeline.", parts[2], parts[1]),
			Subject:  rng.Ptr(),
		})
		return nil
	}

	if len(parts) >= 4 {
		out, ok := n.Outputs[parts[3]]
		if !ok {
			b.diags = append(b.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Reference to undeclared output",
				Detail:   fmt.Sprintf("Component type %q has no output %q.", n.Type, parts[3]),
				Subject:  rng.Ptr(),
			})
			return nil
		}
		return out
	}

	// Without an output name, a component with exactly one output is
	// unambiguous.
	if len(n.Outputs) == 1 {
		for _, out := range n.Outputs {
			return out
		}
	}
	b.diags = append(b.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Ambiguous reference",
		Detail:   fmt.Sprintf("Component %q has %d outputs; name one explicitly.", n.ID, len(n.Outputs)),
		Subject:  rng.Ptr(),
	})
	return nil
}

// linkArguments binds a node's argument expressions to channels and
// type-checks them against the component's declared inputs.
func (b *build) linkArguments(n *node.Node) {
	def, _ := b.reg.Definition(n.Type)

	for _, dep := range n.DependsOn {
		b.checkExplicitDep(n, dep)
	}

	for argName, expr := range n.Arguments {
		inputDef, declared := def.Inputs[argName]
		if !declared {
			b.diags = append(b.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Unknown argument",
				Detail:   fmt.Sprintf("Component type %q declares no input %q.", n.Type, argName),
				Subject:  expr.Range().Ptr(),
			})
			continue
		}

		vars := expr.Variables()
		if len(vars) == 0 {
			// Literal argument: check its type right away.
			val, diags := expr.Value(nil)
			if diags.HasErrors() {
				b.diags = append(b.diags, diags...)
				continue
			}
			if !typeutil.Convertible(val.Type(), inputDef.Type) {
				b.diags = append(b.diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Type mismatch",
					Detail: fmt.Sprintf("Input %q requires %s, but the value has type %s.",
						argName, inputDef.Type.FriendlyName(), val.Type().FriendlyName()),
					Subject: expr.Range().Ptr(),
				})
			}
			continue
		}

		for _, tv := range vars {
			switch tv.RootName() {
			case "component":
				ch := b.channelForTraversal(tv, expr.Range())
				if ch == nil {
					continue
				}
				n.BindInput(argName, ch)
				b.checkBinding(n, argName, ch, inputDef, expr.Range())
			case "each":
				b.bindLoopVarArg(n, argName, tv, inputDef, expr.Range())
			default:
				b.diags = append(b.diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid reference",
					Detail:   fmt.Sprintf("Unknown reference root %q.", tv.RootName()),
					Subject:  expr.Range().Ptr(),
				})
			}
		}
	}

	// Required inputs must be supplied.
	for name, inputDef := range def.Inputs {
		if inputDef.Optional || inputDef.Default != nil {
			continue
		}
		if _, present := n.Arguments[name]; !present {
			b.diags = append(b.diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing required argument",
				Detail:   fmt.Sprintf("Component type %q requires input %q.", n.Type, name),
				Subject:  n.DefRange.Ptr(),
			})
		}
	}
}

// bindLoopVarArg binds an `each.*` reference to the node's loop variable.
func (b *build) bindLoopVarArg(n *node.Node, argName string, tv hcl.Traversal, inputDef *config.InputDefinition, rng hcl.Range) {
	v, inLoop := b.result.LoopVarOf[n]
	if !inLoop {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid use of each",
			Detail:   "The 'each' object is only available inside a for_each block.",
			Subject:  rng.Ptr(),
		})
		return
	}

	parts := traversalParts(tv)
	// each.key is always a string; nothing to bind.
	if len(parts) >= 2 && parts[1] == "key" {
		return
	}

	switch lv := v.(type) {
	case channel.Channel:
		n.BindInput(argName, lv)
		b.checkBinding(n, argName, lv, inputDef, rng)
	case map[string]channel.Channel:
		if len(parts) >= 3 {
			member, ok := lv[parts[2]]
			if !ok {
				b.diags = append(b.diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unknown loop variable member",
					Detail:   fmt.Sprintf("The for_each object has no entry %q.", parts[2]),
					Subject:  rng.Ptr(),
				})
				return
			}
			n.BindInput(argName, member)
			b.checkBinding(n, argName, member, inputDef, rng)
			return
		}
		// `each.value` without a member selects the whole map. Its object
		// shape only materializes at run time, so type checking is
		// deferred; the member producers are already scheduling
		// dependencies through the loop variable itself.
	}
}

// checkBinding verifies a channel's type against the input it feeds.
func (b *build) checkBinding(n *node.Node, argName string, ch channel.Channel, inputDef *config.InputDefinition, rng hcl.Range) {
	if !typeutil.Convertible(ch.Type(), inputDef.Type) {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Type mismatch",
			Detail: fmt.Sprintf("Input %q of %q requires %s, but channel %s carries %s.",
				argName, n.ID, inputDef.Type.FriendlyName(), ch.Ref(), ch.Type().FriendlyName()),
			Subject: rng.Ptr(),
		})
	}
}

// checkExplicitDep validates a depends_on reference of the form
// "<type>.<name>".
func (b *build) checkExplicitDep(n *node.Node, dep string) {
	id := "component." + dep
	if _, ok := b.result.Nodes[id]; !ok {
		b.diags = append(b.diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unknown dependency",
			Detail:   fmt.Sprintf("depends_on entry %q does not match any declared component.", dep),
			Subject:  n.DefRange.Ptr(),
		})
	}
}

// exprTraversal extracts a bare traversal from an expression, if the
// expression is exactly one reference.
func exprTraversal(expr hcl.Expression) (hcl.Traversal, bool) {
	if st, ok := expr.(*hclsyntax.ScopeTraversalExpr); ok {
		return st.Traversal, true
	}
	return nil, false
}

// traversalParts flattens a traversal into its attribute names.
func traversalParts(tv hcl.Traversal) []string {
	var parts []string
	for _, step := range tv {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			parts = append(parts, s.Name)
		case hcl.TraverseAttr:
			parts = append(parts, s.Name)
		}
	}
	return parts
}
