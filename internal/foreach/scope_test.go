package foreach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/node"
	"github.com/weftworks/weft/internal/scope"
)

func listChannel(values ...string) channel.Channel {
	elems := make([]cty.Value, 0, len(values))
	for _, v := range values {
		elems = append(elems, cty.StringVal(v))
	}
	return channel.NewLiteral(cty.ListVal(elems), "test list")
}

func TestScope_Identity(t *testing.T) {
	ch := listChannel("a")
	first := NewScope(ch)
	second := NewScope(ch)

	// Two blocks over the same channel are still distinct scopes.
	assert.NotSame(t, first, second)

	seen := map[*Scope]int{first: 1, second: 2}
	assert.Equal(t, 1, seen[first])
	assert.Equal(t, 2, seen[second])
}

func TestScope_Validate(t *testing.T) {
	t.Run("empty body passes", func(t *testing.T) {
		tr := scope.NewTracker()
		s := NewScope(nil)
		tr.Push(s)
		tr.Pop()

		assert.NoError(t, s.Validate(tr, nil))
	})

	t.Run("single component passes", func(t *testing.T) {
		tr := scope.NewTracker()
		s := NewScope(nil)
		tr.Push(s)
		n := node.New("print", "a")
		tr.Declare(n)
		tr.Pop()

		assert.NoError(t, s.Validate(tr, tr.NodesIn(s)))
	})

	t.Run("multiple components are rejected", func(t *testing.T) {
		tr := scope.NewTracker()
		s := NewScope(nil)
		tr.Push(s)
		tr.Declare(node.New("print", "a"))
		tr.Declare(node.New("print", "b"))
		tr.Pop()

		err := s.Validate(tr, tr.NodesIn(s))
		require.ErrorIs(t, err, ErrMultipleNodes)
		assert.Contains(t, err.Error(), "found 2")
	})

	t.Run("nesting inside another loop scope is rejected", func(t *testing.T) {
		tr := scope.NewTracker()
		outer := NewScope(nil)
		inner := NewScope(nil)

		tr.Push(outer)
		tr.Push(inner)
		tr.Declare(node.New("print", "a"))
		tr.Pop()
		tr.Pop()

		assert.ErrorIs(t, inner.Validate(tr, tr.NodesIn(inner)), ErrNestedLoop)
		// The outer scope itself is fine, structurally, apart from holding
		// the inner block's node.
		assert.NoError(t, outer.Validate(tr, []*node.Node{}))
	})

	t.Run("non-loop ancestors are tolerated", func(t *testing.T) {
		tr := scope.NewTracker()
		tr.Push(&otherScope{})
		s := NewScope(nil)
		tr.Push(s)
		tr.Declare(node.New("print", "a"))
		tr.Pop()
		tr.Pop()

		assert.NoError(t, s.Validate(tr, tr.NodesIn(s)))
	})

	t.Run("validation is re-runnable", func(t *testing.T) {
		tr := scope.NewTracker()
		s := NewScope(nil)
		tr.Push(s)
		tr.Declare(node.New("print", "a"))
		tr.Pop()

		require.NoError(t, s.Validate(tr, tr.NodesIn(s)))
		assert.NoError(t, s.Validate(tr, tr.NodesIn(s)))
	})
}

// otherScope stands in for a future non-loop scope kind.
type otherScope struct{}

func (o *otherScope) Validate(tr *scope.Tracker, containing []*node.Node) error {
	return nil
}
