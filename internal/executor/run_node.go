package executor

import (
	"context"
	"fmt"

	hcllib "github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/config"
	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/foreach"
	weftcl "github.com/weftworks/weft/internal/hcl"
	"github.com/weftworks/weft/internal/node"
)

// runNode executes one graph node and records its outputs. Nodes declared
// inside a for_each block run once per collection element; everything else
// runs exactly once.
func (e *Executor) runNode(ctx context.Context, n *node.Node) error {
	if _, looped := e.res.ScopeOf[n]; looped {
		return e.runLoopNode(ctx, n)
	}
	return e.runSingleNode(ctx, n)
}

// runSingleNode handles the execution of a plain component node.
func (e *Executor) runSingleNode(ctx context.Context, n *node.Node) error {
	evalCtx := e.buildEvalContext(ctx)
	output, err := e.executeComponent(ctx, n, evalCtx, n.ID)
	if err != nil {
		return err
	}
	e.state.Set(n.ID, output)
	return nil
}

// runLoopNode expands a for_each node at run time: it resolves the
// iterated collection, runs the handler once per element with each.key
// and each.value bound, and aggregates the per-element outputs.
func (e *Executor) runLoopNode(ctx context.Context, n *node.Node) error {
	logger := ctxlog.FromContext(ctx).With("component", n.ID)
	logger.Info("▶️ Expanding for_each component")

	evalCtx := e.buildEvalContext(ctx)

	elements, err := e.loopElements(n)
	if err != nil {
		return err
	}

	logger.Debug("Collection resolved.", "count", len(elements))
	if len(elements) == 0 {
		logger.Info("✅ Finished for_each component (0 instances).")
		e.state.Set(n.ID, cty.EmptyTupleVal)
		return nil
	}

	outputs := make([]cty.Value, 0, len(elements))
	for i, elem := range elements {
		instanceID := fmt.Sprintf("%s[%d]", n.ID, i)
		instanceCtx := withEach(evalCtx, elem.key, elem.value)

		output, err := e.executeComponent(ctx, n, instanceCtx, instanceID)
		if err != nil {
			return fmt.Errorf("instance %s failed: %w", instanceID, err)
		}
		outputs = append(outputs, output)
	}

	e.state.Set(n.ID, cty.TupleVal(outputs))
	logger.Info("✅ Finished for_each component.", "instances_created", len(elements))
	return nil
}

// loopElement is one iteration's binding for the each variable.
type loopElement struct {
	key   cty.Value
	value cty.Value
}

// loopElements resolves the node's loop variable into the concrete
// sequence of iterations. A single iterated channel yields its elements
// directly; a channel map iterates all members in lockstep and binds
// each.value to an object with one attribute per member.
func (e *Executor) loopElements(n *node.Node) ([]loopElement, error) {
	switch v := e.res.LoopVarOf[n].(type) {
	case channel.Channel:
		coll, err := e.resolveChannelValue(v)
		if err != nil {
			return nil, err
		}
		return collectionElements(coll)

	case map[string]channel.Channel:
		return e.lockstepElements(v)

	default:
		return nil, fmt.Errorf("node %s has no usable loop variable (%T)", n.ID, v)
	}
}

// lockstepElements iterates every member channel's collection in lockstep.
// All members must resolve to collections of the same length.
func (e *Executor) lockstepElements(channels map[string]channel.Channel) ([]loopElement, error) {
	length := -1
	members := make(map[string][]loopElement, len(channels))

	for key, ch := range channels {
		coll, err := e.resolveChannelValue(ch)
		if err != nil {
			return nil, fmt.Errorf("loop member %q: %w", key, err)
		}
		elems, err := collectionElements(coll)
		if err != nil {
			return nil, fmt.Errorf("loop member %q: %w", key, err)
		}
		if length >= 0 && len(elems) != length {
			return nil, fmt.Errorf("loop members have mismatched lengths: %q has %d elements, expected %d",
				key, len(elems), length)
		}
		length = len(elems)
		members[key] = elems
	}

	out := make([]loopElement, 0, length)
	for i := 0; i < length; i++ {
		attrs := make(map[string]cty.Value, len(members))
		for key, elems := range members {
			attrs[key] = elems[i].value
		}
		out = append(out, loopElement{
			key:   cty.NumberIntVal(int64(i)),
			value: cty.ObjectVal(attrs),
		})
	}
	return out, nil
}

// collectionElements flattens an iterable cty value into ordered
// key/value pairs.
func collectionElements(coll cty.Value) ([]loopElement, error) {
	if coll.IsNull() || !coll.IsKnown() {
		return nil, fmt.Errorf("collection is not known at run time")
	}
	if !coll.CanIterateElements() {
		return nil, fmt.Errorf("value of type %s cannot be iterated", coll.Type().FriendlyName())
	}

	var elems []loopElement
	for it := coll.ElementIterator(); it.Next(); {
		k, v := it.Element()
		elems = append(elems, loopElement{key: k, value: v})
	}
	return elems, nil
}

// resolveChannelValue materializes a channel's value from run state. A
// literal carries its value; an output channel looks up its producer's
// recorded outputs.
func (e *Executor) resolveChannelValue(ch channel.Channel) (cty.Value, error) {
	switch c := ch.(type) {
	case *channel.Literal:
		return c.Value, nil

	case *channel.Output:
		val, ok := e.state.Get(c.NodeID)
		if !ok {
			return cty.NilVal, fmt.Errorf("producer %s has not completed", c.NodeID)
		}
		if !val.Type().IsObjectType() || !val.Type().HasAttribute(c.Name) {
			return cty.NilVal, fmt.Errorf("producer %s has no output %q", c.NodeID, c.Name)
		}
		return val.GetAttr(c.Name), nil

	case *foreach.IterationChannel:
		return e.resolveChannelValue(c.Wrapped())

	default:
		return cty.NilVal, fmt.Errorf("cannot resolve channel %s (%T)", ch.Ref(), ch)
	}
}

// executeComponent contains the shared logic for one handler invocation:
// evaluate arguments, decode them into the handler's input struct, call
// the handler, and shape its result into the declared outputs object.
func (e *Executor) executeComponent(ctx context.Context, n *node.Node, evalCtx *hcllib.EvalContext, instanceID string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("component", instanceID)
	logger.Info("▶️ Starting component instance")

	def, ok := e.reg.Definition(n.Type)
	if !ok {
		return cty.NilVal, fmt.Errorf("unknown component type %q", n.Type)
	}
	rc, ok := e.reg.HandlerFor(def)
	if !ok {
		return cty.NilVal, fmt.Errorf("handler %q not registered for component type %q",
			def.Lifecycle.OnRun, n.Type)
	}

	values, err := weftcl.EvaluateArguments(n.Arguments, def.Inputs, evalCtx)
	if err != nil {
		return cty.NilVal, fmt.Errorf("arguments for %s: %w", instanceID, err)
	}

	var input any
	if rc.NewInput != nil {
		input = rc.NewInput()
		if err := weftcl.DecodeInto(values, input); err != nil {
			return cty.NilVal, fmt.Errorf("decoding arguments for %s: %w", instanceID, err)
		}
	}

	logger.Debug("Calling component run handler.", "handler", def.Lifecycle.OnRun)
	raw, err := rc.Fn(ctx, input)
	if err != nil {
		return cty.NilVal, err
	}

	output, err := shapeOutputs(def, raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("outputs of %s: %w", instanceID, err)
	}

	logger.Info("✅ Finished component instance")
	return output, nil
}

// shapeOutputs converts a handler's raw return value into the outputs
// object declared in the component manifest. A handler for a
// single-output component may return the bare value instead of an object.
func shapeOutputs(def *config.ComponentDefinition, raw cty.Value) (cty.Value, error) {
	if len(def.Outputs) == 0 {
		return cty.EmptyObjectVal, nil
	}

	attrTypes := make(map[string]cty.Type, len(def.Outputs))
	for name, od := range def.Outputs {
		attrTypes[name] = od.Type
	}
	want := cty.Object(attrTypes)

	converted, err := convert.Convert(raw, want)
	if err == nil {
		return converted, nil
	}

	if len(def.Outputs) == 1 {
		var name string
		for n := range def.Outputs {
			name = n
		}
		wrapped, wrapErr := convert.Convert(cty.ObjectVal(map[string]cty.Value{name: raw}), want)
		if wrapErr == nil {
			return wrapped, nil
		}
	}

	return cty.NilVal, fmt.Errorf("cannot convert handler result %s to declared outputs %s: %w",
		raw.Type().FriendlyName(), want.FriendlyName(), err)
}
