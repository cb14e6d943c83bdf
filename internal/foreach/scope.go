// Package foreach implements the for_each looping construct of the
// pipeline definition language: the scope that marks one for_each block,
// the loopable adapter that turns an iterable value into a loop variable,
// and the block construct that ties them to the scope tracker.
package foreach

import (
	"fmt"

	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/node"
	"github.com/weftworks/weft/internal/scope"
)

// Scope marks one for_each block. Scopes are identity objects: they are
// always handled as pointers, never compared by content, because two
// blocks iterating the same channel are still distinct loop scopes.
type Scope struct {
	// WrappedChannel is the channel being iterated, when the block's
	// loopable wraps a single channel. Nil otherwise. The channel is owned
	// by whichever node produced it; the scope only borrows the reference.
	WrappedChannel channel.Channel
}

// NewScope creates the scope for a for_each block. The wrapped channel is
// optional.
func NewScope(wrapped channel.Channel) *Scope {
	return &Scope{WrappedChannel: wrapped}
}

// Validate enforces the structural rules of a for_each block against the
// nodes declared inside it. It is a pure check and may be re-run.
func (s *Scope) Validate(tr *scope.Tracker, containing []*node.Node) error {
	for _, ancestor := range tr.Ancestors(s) {
		if _, ok := ancestor.(*Scope); ok {
			return ErrNestedLoop
		}
	}

	if len(containing) > 1 {
		return fmt.Errorf("%w: found %d", ErrMultipleNodes, len(containing))
	}

	// TODO: reject blocks whose component does not consume the loop
	// variable, directly or transitively. Until then any single-component
	// body passes.
	return nil
}

var _ scope.Scope = (*Scope)(nil)
