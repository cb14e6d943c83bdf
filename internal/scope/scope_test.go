package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftworks/weft/internal/node"
)

// markerScope is a minimal Scope implementation for tracker tests.
type markerScope struct {
	name string
}

func (m *markerScope) Validate(tr *Tracker, containing []*node.Node) error {
	return nil
}

func TestTracker_PushPop(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, 0, tr.Depth())

	outer := &markerScope{name: "outer"}
	inner := &markerScope{name: "inner"}

	tr.Push(outer)
	assert.Equal(t, 1, tr.Depth())
	tr.Push(inner)
	assert.Equal(t, 2, tr.Depth())

	assert.Same(t, inner, tr.Pop())
	assert.Same(t, outer, tr.Pop())
	assert.Equal(t, 0, tr.Depth())
}

func TestTracker_PopEmptyPanics(t *testing.T) {
	tr := NewTracker()
	assert.Panics(t, func() { tr.Pop() })
}

func TestTracker_Active(t *testing.T) {
	tr := NewTracker()
	outer := &markerScope{name: "outer"}
	inner := &markerScope{name: "inner"}
	tr.Push(outer)
	tr.Push(inner)

	active := tr.Active()
	require.Len(t, active, 2)
	assert.Same(t, outer, active[0])
	assert.Same(t, inner, active[1])

	// The returned slice is a copy; mutating it leaves the tracker alone.
	active[0] = nil
	assert.Same(t, outer, tr.Active()[0])
}

func TestTracker_AncestorsSurvivePop(t *testing.T) {
	tr := NewTracker()
	grand := &markerScope{name: "grand"}
	parent := &markerScope{name: "parent"}
	child := &markerScope{name: "child"}

	tr.Push(grand)
	tr.Push(parent)
	tr.Push(child)
	tr.Pop()
	tr.Pop()
	tr.Pop()

	chain := tr.Ancestors(child)
	require.Len(t, chain, 2)
	assert.Same(t, parent, chain[0], "immediate parent comes first")
	assert.Same(t, grand, chain[1])

	assert.Empty(t, tr.Ancestors(grand))
}

func TestTracker_IdentityNotContent(t *testing.T) {
	tr := NewTracker()
	a := &markerScope{name: "same"}
	b := &markerScope{name: "same"}

	tr.Push(a)
	tr.Push(b)
	tr.Pop()
	tr.Pop()

	// Equal content, distinct scopes: each keeps its own chain.
	assert.Empty(t, tr.Ancestors(a))
	require.Len(t, tr.Ancestors(b), 1)
	assert.Same(t, a, tr.Ancestors(b)[0])
}

func TestTracker_Declare(t *testing.T) {
	tr := NewTracker()
	outer := &markerScope{name: "outer"}
	inner := &markerScope{name: "inner"}

	before := node.New("print", "before")
	tr.Declare(before) // no open scopes, attached nowhere

	tr.Push(outer)
	first := node.New("print", "first")
	tr.Declare(first)

	tr.Push(inner)
	second := node.New("print", "second")
	tr.Declare(second)
	tr.Pop()
	tr.Pop()

	assert.Empty(t, tr.NodesIn(&markerScope{}))
	assert.Equal(t, []*node.Node{second}, tr.NodesIn(inner))
	// Outer scope sees nodes from nested blocks too.
	assert.Equal(t, []*node.Node{first, second}, tr.NodesIn(outer))
}
