package foreach

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/channel"
)

// IterationChannel is the loop variable handle for one for_each scope over
// a single channel. It stands in for "the current element" of the wrapped
// channel's collection; its type is the element type, and it is bound to
// exactly one scope.
type IterationChannel struct {
	wrapped  channel.Channel
	scope    *Scope
	elemType cty.Type
}

// Type implements channel.Channel with the element type of the iterated
// collection.
func (c *IterationChannel) Type() cty.Type { return c.elemType }

// Source implements channel.Channel; the element is produced by whichever
// node produces the wrapped collection.
func (c *IterationChannel) Source() string { return c.wrapped.Source() }

// Ref implements channel.Channel.
func (c *IterationChannel) Ref() string {
	return fmt.Sprintf("each.value (over %s)", c.wrapped.Ref())
}

// Wrapped returns the collection channel being iterated.
func (c *IterationChannel) Wrapped() channel.Channel { return c.wrapped }

// Scope returns the for_each scope this handle belongs to.
func (c *IterationChannel) Scope() *Scope { return c.scope }

// FromChannel builds a Loopable that iterates a single channel. The
// channel's type must be iterable; its element type becomes the loop
// variable's type.
func FromChannel(ch channel.Channel) (*Loopable, error) {
	if ch == nil {
		return nil, fmt.Errorf("%w: nil channel", ErrNotLoopable)
	}
	elemType, ok := channel.ElementType(ch.Type())
	if !ok {
		return nil, fmt.Errorf("%w: channel %s has non-iterable type %s",
			ErrNotLoopable, ch.Ref(), ch.Type().FriendlyName())
	}

	l, err := NewLoopable(func(s *Scope) (LoopVar, error) {
		return channel.Channel(&IterationChannel{wrapped: ch, scope: s, elemType: elemType}), nil
	})
	if err != nil {
		return nil, err
	}
	l.wrapped = ch
	return l, nil
}

// FromChannelMap builds a Loopable over several channels iterated in
// lockstep; the loop variable is a map with one iteration handle per
// entry. Every member channel must be iterable.
func FromChannelMap(channels map[string]channel.Channel) (*Loopable, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: empty channel map", ErrNotLoopable)
	}

	elemTypes := make(map[string]cty.Type, len(channels))
	for key, ch := range channels {
		if ch == nil {
			return nil, fmt.Errorf("%w: nil channel for key %q", ErrNotLoopable, key)
		}
		elemType, ok := channel.ElementType(ch.Type())
		if !ok {
			return nil, fmt.Errorf("%w: channel %s (key %q) has non-iterable type %s",
				ErrNotLoopable, ch.Ref(), key, ch.Type().FriendlyName())
		}
		elemTypes[key] = elemType
	}

	return NewLoopable(func(s *Scope) (LoopVar, error) {
		vars := make(map[string]channel.Channel, len(channels))
		for key, ch := range channels {
			vars[key] = &IterationChannel{wrapped: ch, scope: s, elemType: elemTypes[key]}
		}
		return vars, nil
	})
}
