package channel

import "github.com/zclconf/go-cty/cty"

// Literal is a channel carrying a value known at definition time, such as
// a list written directly in a for_each block. It has no producing node.
type Literal struct {
	// Value is the definition-time value.
	Value cty.Value
	// RefName is how the author wrote the value, for diagnostics.
	RefName string
}

// NewLiteral wraps a definition-time value in a channel.
func NewLiteral(val cty.Value, ref string) *Literal {
	return &Literal{Value: val, RefName: ref}
}

// Type implements Channel.
func (l *Literal) Type() cty.Type { return l.Value.Type() }

// Source implements Channel; literals have no producing node.
func (l *Literal) Source() string { return "" }

// Ref implements Channel.
func (l *Literal) Ref() string {
	if l.RefName != "" {
		return l.RefName
	}
	return "literal value"
}
