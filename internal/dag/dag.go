package dag

import (
	"fmt"
	"sort"
	"sync"
)

// Graph is a collection of nodes and their dependency edges. Operations
// are concurrency-safe so the executor can query it while workers run.
type Graph struct {
	mutex sync.RWMutex
	nodes map[string]*vertex
}

// vertex is un-exported to force interaction through the public API with
// string IDs rather than direct struct manipulation.
type vertex struct {
	id         string
	deps       map[string]*vertex
	dependents map[string]*vertex
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*vertex)}
}

// AddNode adds a node with the given ID. Adding an existing ID is a no-op.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}
	g.nodes[id] = &vertex{
		id:         id,
		deps:       make(map[string]*vertex),
		dependents: make(map[string]*vertex),
	}
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// IDs returns all node IDs in sorted order.
func (g *Graph) IDs() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddEdge creates a directed edge meaning toID depends on fromID. An error
// is returned if either node does not exist or the edge is
// self-referential. Duplicate edges are a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	from, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	to, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	to.deps[fromID] = from
	from.dependents[toID] = to
	return nil
}

// Dependencies returns the IDs of nodes the given node depends on.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	deps := make([]string, 0, len(v.deps))
	for depID := range v.deps {
		deps = append(deps, depID)
	}
	sort.Strings(deps)
	return deps, nil
}

// Dependents returns the IDs of nodes that depend on the given node.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	v, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	dependents := make([]string, 0, len(v.dependents))
	for depID := range v.dependents {
		dependents = append(dependents, depID)
	}
	sort.Strings(dependents)
	return dependents, nil
}

// DetectCycles returns a non-nil error if the graph contains a cycle,
// naming the first node found on one.
func (g *Graph) DetectCycles() error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		if permanent[v.id] {
			return nil
		}
		if temporary[v.id] {
			return fmt.Errorf("cycle detected involving node %q", v.id)
		}
		temporary[v.id] = true
		for _, dependent := range v.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, v.id)
		permanent[v.id] = true
		return nil
	}

	for _, v := range g.nodes {
		if !permanent[v.id] {
			if err := visit(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Levels groups node IDs by dependency depth using Kahn's algorithm.
// Nodes within the same level have no edges between them and may run in
// parallel. Returns an error if the graph has a cycle.
func (g *Graph) Levels() ([][]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	inDegree := make(map[string]int, len(g.nodes))
	for id, v := range g.nodes {
		inDegree[id] = len(v.deps)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var levels [][]string
	visited := 0

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		var next []string
		for _, id := range queue {
			for depID := range g.nodes[id].dependents {
				inDegree[depID]--
				if inDegree[depID] == 0 {
					next = append(next, depID)
				}
			}
		}
		sort.Strings(next)
		queue = next
	}

	if visited != len(g.nodes) {
		return nil, fmt.Errorf("cycle detected: processed %d of %d nodes", visited, len(g.nodes))
	}
	return levels, nil
}
