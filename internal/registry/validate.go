package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/weftworks/weft/internal/ctxlog"
)

// Validate performs a strict parity check between manifests and Go code.
// Every manifest input must map to a tagged field on the handler's input
// struct and vice versa, and the declared types must line up.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for componentType, def := range r.Definitions {
		handler, ok := r.HandlerFor(def)
		if !ok {
			continue
		}

		if handler.InputType == nil {
			if len(def.Inputs) > 0 {
				errs = append(errs, fmt.Sprintf("component %q: manifest declares inputs, but Go handler has no input struct", componentType))
			}
			continue
		}

		goInputs := make(map[string]reflect.StructField)
		inputType := handler.InputType
		for i := 0; i < inputType.NumField(); i++ {
			field := inputType.Field(i)
			if !field.IsExported() {
				continue
			}
			tagName := strings.Split(field.Tag.Get("weft"), ",")[0]
			if tagName != "" && tagName != "-" {
				goInputs[tagName] = field
			}
		}

		for name := range goInputs {
			if _, declared := def.Inputs[name]; !declared {
				errs = append(errs, fmt.Sprintf("component %q: Go struct has field for input %q which is not declared in manifest", componentType, name))
			}
		}
		for name := range def.Inputs {
			if _, present := goInputs[name]; !present {
				errs = append(errs, fmt.Sprintf("component %q: manifest declares input %q which is not found in Go struct", componentType, name))
			}
		}

		for name, inputDef := range def.Inputs {
			goField, ok := goInputs[name]
			if !ok {
				continue // already reported by the presence check
			}

			if inputDef.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest input uses 'type = any', which disables static type checking.",
					"component", componentType, "input", name)
				continue
			}

			// cty.Value fields accept anything; the handler deals with it.
			if goField.Type == reflect.TypeOf(cty.Value{}) {
				continue
			}

			goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
			if err != nil {
				errs = append(errs, fmt.Sprintf("component %q, input %q: could not imply cty type from Go field type %s: %v",
					componentType, name, goField.Type, err))
				continue
			}

			if !inputDef.Type.Equals(goFieldType) {
				errs = append(errs, fmt.Sprintf("component %q, input %q: type mismatch: manifest requires %s but Go field %q provides %s",
					componentType, name, inputDef.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
