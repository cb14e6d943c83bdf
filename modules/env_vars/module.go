package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/weftworks/weft/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// OnRunEnvVars is the handler for the 'env_vars' component. It snapshots
// the process environment into a single map output.
func OnRunEnvVars(ctx context.Context, input any) (cty.Value, error) {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}

	all, err := gocty.ToCtyValue(envMap, cty.Map(cty.String))
	if err != nil {
		return cty.NilVal, err
	}
	return cty.ObjectVal(map[string]cty.Value{"all": all}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent("OnRunEnvVars", &registry.RegisteredComponent{
		Fn: OnRunEnvVars,
	})
}
