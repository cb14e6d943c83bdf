// Package scope tracks the nesting of definition-time scope blocks while a
// pipeline definition is being built. A scope is pushed when its block
// opens, popped when it closes, and asked to validate the nodes declared
// inside it. Scopes are compared by identity only: every opened block is a
// distinct scope even when two blocks have identical contents.
package scope

import (
	"github.com/weftworks/weft/internal/node"
)

// Scope is a marker for one definition-time block. Implementations are
// always pointer types so that map keys and comparisons use identity.
type Scope interface {
	// Validate checks the structural rules of the scope against the nodes
	// declared textually inside it. The tracker is supplied so the scope
	// can inspect its chain of enclosing scopes. It must be a pure check:
	// no side effects, safe to call more than once.
	Validate(tr *Tracker, containing []*node.Node) error
}

// Tracker is the stack of active scopes for a single definition pass.
// Pipeline definitions are built in one sequential pass, so the tracker is
// not safe for concurrent use and does not need to be.
type Tracker struct {
	stack []Scope

	// ancestors records, permanently, the enclosing chain captured when a
	// scope was pushed. Validation happens after the scope is popped, so
	// this must survive the pop.
	ancestors map[Scope][]Scope

	// nodes records which nodes were declared while a scope was active.
	nodes map[Scope][]*node.Node
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		ancestors: make(map[Scope][]Scope),
		nodes:     make(map[Scope][]*node.Node),
	}
}

// Push opens a scope. The current stack, from immediate parent outward, is
// captured as the scope's ancestor chain.
func (t *Tracker) Push(s Scope) {
	chain := make([]Scope, 0, len(t.stack))
	for i := len(t.stack) - 1; i >= 0; i-- {
		chain = append(chain, t.stack[i])
	}
	t.ancestors[s] = chain
	t.stack = append(t.stack, s)
}

// Pop closes the innermost scope and returns it. Popping an empty tracker
// is a bug in the enclosing block construct.
func (t *Tracker) Pop() Scope {
	if len(t.stack) == 0 {
		panic("scope: Pop called on an empty tracker")
	}
	s := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return s
}

// Depth returns the number of currently open scopes.
func (t *Tracker) Depth() int { return len(t.stack) }

// Active returns the currently open scopes, outermost first. The returned
// slice is a copy.
func (t *Tracker) Active() []Scope {
	out := make([]Scope, len(t.stack))
	copy(out, t.stack)
	return out
}

// Ancestors returns the chain of scopes that enclosed s when it was pushed,
// ordered from immediate parent outward. The result is valid even after s
// has been popped.
func (t *Tracker) Ancestors(s Scope) []Scope {
	return t.ancestors[s]
}

// Declare records a node against every currently open scope. The builder
// calls this once per declared node.
func (t *Tracker) Declare(n *node.Node) {
	for _, s := range t.stack {
		t.nodes[s] = append(t.nodes[s], n)
	}
}

// NodesIn returns the nodes declared while s was open, in declaration
// order. Nodes declared in blocks nested inside s are included.
func (t *Tracker) NodesIn(s Scope) []*node.Node {
	return t.nodes[s]
}
