// This file decodes evaluated argument values into the Go input structs of
// component handlers, guided by the manifest's declared input types.

package hcl

import (
	"fmt"
	"reflect"
	"strings"

	hcllib "github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/weftworks/weft/internal/config"
)

// EvaluateArguments evaluates a component's argument expressions in the
// given eval context, applies manifest defaults, and converts each value
// to its declared input type. Missing required inputs and conversion
// failures are author errors.
func EvaluateArguments(
	args map[string]hcllib.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcllib.EvalContext,
) (map[string]cty.Value, error) {
	values := make(map[string]cty.Value, len(defs))

	for name, def := range defs {
		expr, present := args[name]
		if !present {
			if def.Default != nil {
				values[name] = *def.Default
				continue
			}
			if def.Optional {
				continue
			}
			return nil, fmt.Errorf("missing required argument %q", name)
		}

		val, diags := expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating argument %q: %w", name, diags)
		}

		converted, err := convert.Convert(val, def.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q: cannot convert %s to %s: %w",
				name, val.Type().FriendlyName(), def.Type.FriendlyName(), err)
		}
		values[name] = converted
	}

	for name := range args {
		if _, declared := defs[name]; !declared {
			return nil, fmt.Errorf("unknown argument %q", name)
		}
	}

	return values, nil
}

// DecodeInto populates a handler's Go input struct from evaluated argument
// values, matching struct fields to inputs via the `weft` tag.
func DecodeInto(values map[string]cty.Value, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode target must be a pointer to struct, got %T", target)
	}

	structVal := ptr.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldDef.IsExported() || !fieldVal.CanSet() {
			continue
		}

		tagName := strings.Split(fieldDef.Tag.Get("weft"), ",")[0]
		if tagName == "" || tagName == "-" {
			continue
		}

		val, ok := values[tagName]
		if !ok || val.IsNull() {
			continue
		}

		if err := decodeField(val, fieldVal); err != nil {
			return fmt.Errorf("in argument %q: %w", tagName, err)
		}
	}
	return nil
}

// decodeField assigns one cty.Value to a Go struct field.
func decodeField(val cty.Value, field reflect.Value) error {
	// Fields of type cty.Value take the value as-is.
	if field.Type() == reflect.TypeOf(cty.Value{}) {
		field.Set(reflect.ValueOf(val))
		return nil
	}

	switch field.Kind() {
	case reflect.Interface:
		native, err := ctyToNative(val)
		if err != nil {
			return err
		}
		if native != nil {
			field.Set(reflect.ValueOf(native))
		}
		return nil

	case reflect.Map:
		if !val.Type().IsMapType() && !val.Type().IsObjectType() {
			return fmt.Errorf("cannot decode %s into Go map", val.Type().FriendlyName())
		}
		newMap := reflect.MakeMap(field.Type())
		for key, elem := range val.AsValueMap() {
			elemPtr := reflect.New(field.Type().Elem())
			if err := decodeField(elem, elemPtr.Elem()); err != nil {
				return fmt.Errorf("in key %q: %w", key, err)
			}
			newMap.SetMapIndex(reflect.ValueOf(key), elemPtr.Elem())
		}
		field.Set(newMap)
		return nil

	case reflect.Slice:
		if !val.Type().IsListType() && !val.Type().IsTupleType() && !val.Type().IsSetType() {
			return fmt.Errorf("cannot decode %s into Go slice", val.Type().FriendlyName())
		}
		length := val.LengthInt()
		newSlice := reflect.MakeSlice(field.Type(), length, length)
		it := val.ElementIterator()
		for i := 0; it.Next(); i++ {
			_, elem := it.Element()
			if err := decodeField(elem, newSlice.Index(i)); err != nil {
				return fmt.Errorf("in element %d: %w", i, err)
			}
		}
		field.Set(newSlice)
		return nil

	default:
		impliedType, err := gocty.ImpliedType(reflect.Zero(field.Type()).Interface())
		if err != nil {
			return fmt.Errorf("cannot imply cty type for Go field type %s: %w", field.Type(), err)
		}
		converted, err := convert.Convert(val, impliedType)
		if err != nil {
			return fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
		}
		return gocty.FromCtyValue(converted, field.Addr().Interface())
	}
}

// ctyToNative converts a cty.Value into a plain Go value for `any` fields.
func ctyToNative(val cty.Value) (any, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, nil
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())
		it := val.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any, len(val.AsValueMap()))
		for key, elem := range val.AsValueMap() {
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out[key] = native
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported cty type %s", ty.FriendlyName())
	}
}
