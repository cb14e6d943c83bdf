package foreach

import "errors"

// These are definition-time author errors. They abort the definition pass
// and are surfaced to the pipeline author, as diagnostics when the
// definition came from HCL.
var (
	// ErrNestedLoop is returned when a for_each block is opened inside
	// another for_each block.
	ErrNestedLoop = errors.New("nested for_each blocks are not supported yet")

	// ErrMultipleNodes is returned when more than one component is
	// declared inside a single for_each block.
	ErrMultipleNodes = errors.New("cannot declare more than one component within a for_each block yet")

	// ErrNilFactory is returned when a Loopable is constructed without a
	// loop variable factory.
	ErrNilFactory = errors.New("loop variable factory must not be nil")

	// ErrNotLoopable is returned when a factory produces a value that is
	// neither a channel nor a map of channels.
	ErrNotLoopable = errors.New("for_each got a non-loopable value")

	// ErrDirectUse is returned on any attempt to index into a loopable
	// value instead of iterating it.
	ErrDirectUse = errors.New("cannot use a loopable value directly; wrap it with a for_each block")
)
