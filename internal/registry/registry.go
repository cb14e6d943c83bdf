// Package registry holds the component handlers compiled into the binary
// and the component type definitions loaded from manifests, and checks the
// two against each other.
package registry

import (
	"context"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/weftworks/weft/internal/config"
)

// Module is the interface every built-in module implements to register its
// handlers.
type Module interface {
	Register(r *Registry)
}

// Handler is the Go implementation behind a component's on_run lifecycle
// event.
type Handler func(ctx context.Context, input any) (cty.Value, error)

// RegisteredComponent bundles a handler with the machinery needed to build
// and inspect its input struct.
type RegisteredComponent struct {
	// NewInput allocates a fresh input struct for one invocation.
	NewInput func() any
	// InputType is the reflect type of the input struct, used for
	// manifest parity validation.
	InputType reflect.Type
	// Fn is the handler itself.
	Fn Handler
}

// Registry holds the registered handlers and definitions for a single
// application instance.
type Registry struct {
	Handlers    map[string]*RegisteredComponent
	Definitions map[string]*config.ComponentDefinition
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		Handlers:    make(map[string]*RegisteredComponent),
		Definitions: make(map[string]*config.ComponentDefinition),
	}
}

// RegisterComponent adds a Go handler under the given name.
func (r *Registry) RegisterComponent(name string, rc *RegisteredComponent) {
	r.Handlers[name] = rc
}

// PopulateFromModel copies loaded component definitions into the registry.
func (r *Registry) PopulateFromModel(model *config.Model) {
	for key, def := range model.Definitions {
		r.Definitions[key] = def
	}
}

// Definition looks up the manifest definition for a component type.
func (r *Registry) Definition(componentType string) (*config.ComponentDefinition, bool) {
	def, ok := r.Definitions[componentType]
	return def, ok
}

// HandlerFor resolves the Go handler for a component definition, via its
// lifecycle mapping.
func (r *Registry) HandlerFor(def *config.ComponentDefinition) (*RegisteredComponent, bool) {
	if def.Lifecycle == nil || def.Lifecycle.OnRun == "" {
		return nil, false
	}
	rc, ok := r.Handlers[def.Lifecycle.OnRun]
	return rc, ok
}
