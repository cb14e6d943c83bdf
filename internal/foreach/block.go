package foreach

import (
	"github.com/weftworks/weft/internal/scope"
)

// Block runs body inside a new for_each scope. It opens the scope on the
// tracker, obtains the loop variable from the loopable, invokes body to
// declare the block's components, closes the scope, and validates the
// nodes declared inside it. This is the Go-level mirror of an HCL
// `for_each` block; the builder drives it for definitions loaded from
// files.
func Block(tr *scope.Tracker, l *Loopable, body func(LoopVar) error) error {
	s := NewScope(l.Wrapped())

	tr.Push(s)
	v, err := l.GetLoopVar(s)
	if err == nil {
		err = body(v)
	}
	tr.Pop()
	if err != nil {
		return err
	}

	return s.Validate(tr, tr.NodesIn(s))
}
