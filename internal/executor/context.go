package executor

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/ctxlog"
)

// buildEvalContext creates the HCL evaluation context for a node about to
// run. It exposes every completed node's outputs under
// component.<type>.<name>, giving argument expressions a consistent view
// of upstream state.
func (e *Executor) buildEvalContext(ctx context.Context) *hcl.EvalContext {
	logger := ctxlog.FromContext(ctx)

	// map[component_type] -> map[instance_name] -> outputs object
	byType := make(map[string]map[string]cty.Value)
	completed := 0
	for _, n := range e.res.Order {
		val, ok := e.state.Get(n.ID)
		if !ok {
			continue
		}
		if _, ok := byType[n.Type]; !ok {
			byType[n.Type] = make(map[string]cty.Value)
		}
		byType[n.Type][n.Name] = val
		completed++
	}

	components := make(map[string]cty.Value, len(byType))
	for componentType, instances := range byType {
		components[componentType] = cty.ObjectVal(instances)
	}

	vars := map[string]cty.Value{
		"component": cty.ObjectVal(components),
	}
	logger.Debug("Executor: evaluation context built.", "completed_nodes", completed)
	return &hcl.EvalContext{Variables: vars}
}

// withEach derives a child context that binds the each.key and each.value
// variables for one loop iteration.
func withEach(parent *hcl.EvalContext, key, value cty.Value) *hcl.EvalContext {
	child := parent.NewChild()
	child.Variables = map[string]cty.Value{
		"each": cty.ObjectVal(map[string]cty.Value{
			"key":   key,
			"value": value,
		}),
	}
	return child
}
