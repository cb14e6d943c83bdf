package dag

import (
	"context"
	"fmt"

	"github.com/weftworks/weft/internal/builder"
	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/foreach"
)

// Build constructs a dependency graph from the result of a definition
// pass. Edges come from three sources: bound input channels, which name
// the node that produces them; explicit depends_on references; and the
// loop variable of a for_each node, whose collection producers must
// finish before the loop can expand.
func Build(ctx context.Context, res *builder.Result) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	g := New()

	for id := range res.Nodes {
		g.AddNode(id)
	}

	for id, n := range res.Nodes {
		for name, ch := range n.Inputs {
			src := ch.Source()
			if src == "" {
				continue // literal, no producer
			}
			if err := g.AddEdge(src, id); err != nil {
				return nil, fmt.Errorf("linking input %q of %s: %w", name, id, err)
			}
		}
		for _, dep := range n.DependsOn {
			if err := g.AddEdge("component."+dep, id); err != nil {
				return nil, fmt.Errorf("linking depends_on of %s: %w", id, err)
			}
		}
	}

	// A for_each node waits for every producer feeding its collection,
	// even when the body never references the loop variable.
	for n, v := range res.LoopVarOf {
		for _, ch := range loopVarChannels(v) {
			src := ch.Source()
			if src == "" {
				continue // literal collection
			}
			if err := g.AddEdge(src, n.ID); err != nil {
				return nil, fmt.Errorf("linking loop variable of %s: %w", n.ID, err)
			}
		}
	}

	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	logger.Debug("DAG: graph built.", "node_count", g.Len())
	return g, nil
}

// loopVarChannels flattens a loop variable into its underlying channels.
func loopVarChannels(v foreach.LoopVar) []channel.Channel {
	switch lv := v.(type) {
	case channel.Channel:
		return []channel.Channel{lv}
	case map[string]channel.Channel:
		channels := make([]channel.Channel, 0, len(lv))
		for _, ch := range lv {
			channels = append(channels, ch)
		}
		return channels
	}
	return nil
}
