// Package executor runs a built pipeline graph level by level with a
// bounded worker pool. Component handlers execute once per node, or once
// per collection element for nodes declared inside a for_each block.
package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/weftworks/weft/internal/builder"
	"github.com/weftworks/weft/internal/ctxlog"
	"github.com/weftworks/weft/internal/dag"
	"github.com/weftworks/weft/internal/node"
	"github.com/weftworks/weft/internal/registry"
)

// Executor orchestrates the end-to-end execution of a pipeline graph.
type Executor struct {
	graph   *dag.Graph
	res     *builder.Result
	reg     *registry.Registry
	state   *State
	workers int
}

// New creates an Executor over a built graph. workers caps how many
// nodes run concurrently within a level; values below 1 are clamped to 1.
func New(graph *dag.Graph, res *builder.Result, reg *registry.Registry, workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		graph:   graph,
		res:     res,
		reg:     reg,
		state:   NewState(),
		workers: workers,
	}
}

// State exposes the run's accumulated node outputs, mainly for tests and
// callers that want to inspect results after Run. The returned value is
// live during execution.
func (e *Executor) State() *State {
	return e.state
}

// Run executes every node in topological order. Nodes within a level are
// dispatched to the worker pool concurrently; the first failure cancels
// the run and is returned.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	levels, err := e.graph.Levels()
	if err != nil {
		return fmt.Errorf("scheduling: %w", err)
	}
	logger.Debug("Executor: run started.", "levels", len(levels), "workers", e.workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i, level := range levels {
		logger.Debug("Executor: starting level.", "level", i, "nodes", len(level))
		if err := e.runLevel(ctx, cancel, level); err != nil {
			return err
		}
	}

	logger.Debug("Executor: run finished.", "node_count", e.graph.Len())
	return nil
}

// runLevel executes one level's nodes through the worker pool and waits
// for all of them before returning the first error, if any.
func (e *Executor) runLevel(ctx context.Context, cancel context.CancelFunc, level []string) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, e.workers)

	for _, id := range level {
		n, ok := e.res.Nodes[id]
		if !ok {
			return fmt.Errorf("graph references unknown node %q", id)
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(n *node.Node) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			if err := e.runNode(ctx, n); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", n.ID, err)
				}
				mu.Unlock()
				cancel()
			}
		}(n)
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
