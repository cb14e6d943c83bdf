// This file translates decoded HCL schema structs into the format-agnostic
// configuration model.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/schema"
)

// translateComponent converts a component block into the agnostic model.
func (l *Loader) translateComponent(c *schema.Component) *config.Component {
	out := &config.Component{
		Type:      c.Type,
		Name:      c.Name,
		Arguments: extractBodyAttributes(c.Arguments),
		DependsOn: c.DependsOn,
	}
	for _, expr := range out.Arguments {
		out.DefRange = expr.Range()
		break
	}
	return out
}

// translateForEach converts a for_each block, applying the parse-time
// checks on its `in` expression. Nested blocks are translated too; the
// builder rejects them during scope validation.
func (l *Loader) translateForEach(fe *schema.ForEach) (*config.ForEachGroup, hcl.Diagnostics) {
	diags := validateForEachCollection(fe.In)

	group := &config.ForEachGroup{
		In:       fe.In,
		DefRange: fe.In.Range(),
	}
	for _, c := range fe.Components {
		group.Components = append(group.Components, l.translateComponent(c))
	}
	for _, nested := range fe.ForEach {
		nestedGroup, nestedDiags := l.translateForEach(nested)
		diags = append(diags, nestedDiags...)
		group.ForEach = append(group.ForEach, nestedGroup)
	}
	return group, diags
}

// translateDefinition converts a component manifest into the agnostic
// model, parsing input and output type expressions into cty types.
func (l *Loader) translateDefinition(ctx context.Context, s *schema.ComponentDefinition) (*config.ComponentDefinition, error) {
	def := &config.ComponentDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}
	if s.Lifecycle != nil {
		def.Lifecycle = &config.Lifecycle{OnRun: s.Lifecycle.OnRun}
	}

	for _, in := range s.Inputs {
		translated, err := translateInputDefinition(ctx, in, s.Type)
		if err != nil {
			return nil, err
		}
		def.Inputs[in.Name] = translated
	}

	for _, out := range s.Outputs {
		parsedType, err := typeExprToCtyType(ctx, out.Type)
		if err != nil {
			return nil, fmt.Errorf("in component_def %q, output %q: %w", s.Type, out.Name, err)
		}
		def.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        parsedType,
			Description: out.Description,
		}
	}
	return def, nil
}

// translateInputDefinition processes a single input block, handling its
// default value and type expression.
func translateInputDefinition(ctx context.Context, in *schema.InputDefinition, ownerType string) (*config.InputDefinition, error) {
	var defaultVal *cty.Value
	var isOptional bool

	if in.Default != nil && !in.Default.IsNull() {
		defaultVal = in.Default
		isOptional = true
	}

	parsedType, err := typeExprToCtyType(ctx, in.Type)
	if err != nil {
		return nil, fmt.Errorf("in component_def %q, input %q: %w", ownerType, in.Name, err)
	}

	return &config.InputDefinition{
		Name:        in.Name,
		Type:        parsedType,
		Description: in.Description,
		Default:     defaultVal,
		Optional:    isOptional,
	}, nil
}

// extractBodyAttributes flattens an arguments block into a map of raw
// expressions keyed by attribute name.
func extractBodyAttributes(args *schema.Arguments) map[string]hcl.Expression {
	if args == nil || args.Body == nil {
		return nil
	}
	attrs, _ := args.Body.JustAttributes()
	if len(attrs) == 0 {
		return nil
	}
	exprMap := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprMap[name] = attr.Expr
	}
	return exprMap
}
