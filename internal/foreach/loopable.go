package foreach

import (
	"fmt"

	"github.com/weftworks/weft/internal/channel"
	"github.com/weftworks/weft/internal/typeutil"
)

// LoopVar is the value bound inside a for_each block: either a single
// channel.Channel, or a map from names to channels. The shape is checked
// at runtime by typeutil.IsLoopVar.
type LoopVar = any

// Factory produces the loop variable for one for_each scope. Factories are
// invoked on every GetLoopVar call, so they should be cheap and free of
// side effects.
type Factory func(*Scope) (LoopVar, error)

// Loopable adapts an iterable value so it can be used with a for_each
// block, and guards against using the raw value directly. It is stateless
// after construction.
type Loopable struct {
	factory Factory

	// wrapped is the channel the loopable was built from, if any. The
	// block construct copies it onto the scope it opens.
	wrapped channel.Channel
}

// NewLoopable wraps a loop variable factory. The factory must be
// invocable.
func NewLoopable(factory Factory) (*Loopable, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	return &Loopable{factory: factory}, nil
}

// Wrapped returns the channel the loopable iterates, or nil when it was
// not built from a single channel.
func (l *Loopable) Wrapped() channel.Channel { return l.wrapped }

// GetLoopVar invokes the factory for the given scope and checks the shape
// of the result. The result is returned unchanged; nothing is cached.
func (l *Loopable) GetLoopVar(s *Scope) (LoopVar, error) {
	v, err := l.factory(s)
	if err != nil {
		return nil, err
	}
	if !typeutil.IsLoopVar(v) {
		return nil, fmt.Errorf("%w: %T", ErrNotLoopable, v)
	}
	return v, nil
}

// Index always fails. It exists so that an attempt to subscript a loopable
// value produces a clear diagnostic pointing at for_each instead of a
// confusing type error.
func (l *Loopable) Index(_ any) (LoopVar, error) {
	return nil, ErrDirectUse
}
