// Package typeutil implements the runtime shape and type compatibility
// checks used when binding pipeline definitions together: whether a value
// is a channel, whether it is a valid loop variable, and whether one cty
// type can feed a declared input of another.
package typeutil

import (
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/weftworks/weft/internal/channel"
)

// IsChannel reports whether v is a usable channel handle. A typed nil
// pointer inside the interface does not count.
func IsChannel(v any) bool {
	ch, ok := v.(channel.Channel)
	if !ok || ch == nil {
		return false
	}
	rv := reflect.ValueOf(ch)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false
	}
	return true
}

// IsChannelMap reports whether v is a non-empty map from names to usable
// channel handles.
func IsChannelMap(v any) bool {
	m, ok := v.(map[string]channel.Channel)
	if !ok || len(m) == 0 {
		return false
	}
	for _, ch := range m {
		if !IsChannel(ch) {
			return false
		}
	}
	return true
}

// IsLoopVar reports whether v has the shape required of a loop variable:
// a single channel, or a map from string keys to channels.
func IsLoopVar(v any) bool {
	return IsChannel(v) || IsChannelMap(v)
}

// Convertible reports whether a value of type from can be bound to an
// input declared with type to. Dynamic on either side defers the check to
// run time, matching how `type = any` behaves in manifests.
func Convertible(from, to cty.Type) bool {
	if from.Equals(cty.DynamicPseudoType) || to.Equals(cty.DynamicPseudoType) {
		return true
	}
	if from.Equals(to) {
		return true
	}
	return convert.GetConversionUnsafe(from, to) != nil
}
