package print

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print component.
type Input struct {
	Value map[string]string `weft:"input"`
}

// OnRunPrint is the handler for the 'print' component's on_run lifecycle
// event.
func OnRunPrint(ctx context.Context, input any) (cty.Value, error) {
	in := input.(*Input)
	slog.Info("Printing input")

	if in.Value == nil {
		fmt.Println("      (null)")
		return cty.EmptyObjectVal, nil
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(in.Value))
	for k := range in.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("      %s = %q\n", k, in.Value[k])
	}

	return cty.EmptyObjectVal, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent("OnRunPrint", &registry.RegisteredComponent{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		Fn:        OnRunPrint,
	})
}
