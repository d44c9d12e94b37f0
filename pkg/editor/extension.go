package editor

import (
	"encoding/json"
	"reflect"
)

// ComponentKey is the vendor extension carrying editor components inside a
// JSON Schema node. Producers and consumers must agree on this exact string.
const ComponentKey = "x-allama-component"

// ComponentIDField identifies a component record.
const ComponentIDField = "component_id"

// Schema is a decoded JSON Schema object that may carry ComponentKey.
type Schema map[string]any

// Component is a single editor component record. Fields other than
// component_id are opaque and preserved as-is.
type Component map[string]any

// ID returns the component identifier or an empty string when the record is
// not a valid component.
func (c Component) ID() string {
	id, _ := c[ComponentIDField].(string)
	return id
}

// IsSchemaWithExtension reports whether value is a non-nil object carrying
// ComponentKey. The value stored under the key is not inspected.
func IsSchemaWithExtension(value any) bool {
	_, found, _ := lookup(value, ComponentKey)
	return found
}

// IsValidComponent reports whether item is a non-nil object whose
// component_id field holds a string.
func IsValidComponent(item any) bool {
	id, found, _ := lookup(item, ComponentIDField)
	if !found {
		return false
	}
	_, ok := id.(string)
	return ok
}

// Components returns the valid component records stored under ComponentKey,
// preserving their order. Invalid entries are dropped silently. The result is
// never nil; a missing or non-sequence annotation yields an empty slice.
func Components(schema Schema) []Component {
	items, ok := asSequence(schema[ComponentKey])
	if !ok {
		return []Component{}
	}
	out := make([]Component, 0, len(items))
	for _, item := range items {
		if !IsValidComponent(item) {
			continue
		}
		if component, ok := toComponent(item); ok {
			out = append(out, component)
		}
	}
	return out
}

// HasMultipleComponents reports whether the annotation is a sequence with
// more than one entry. Entries are counted without validation, so the result
// can be true while Components returns fewer than two records.
func HasMultipleComponents(schema Schema) bool {
	items, ok := asSequence(schema[ComponentKey])
	return ok && len(items) > 1
}

// lookup reads key from an object-like value. objectLike is false for nil,
// primitives, slices and structs.
func lookup(value any, key string) (result any, found bool, objectLike bool) {
	switch v := value.(type) {
	case nil:
		return nil, false, false
	case map[string]any:
		if v == nil {
			return nil, false, false
		}
		result, found = v[key]
		return result, found, true
	case Schema:
		if v == nil {
			return nil, false, false
		}
		result, found = v[key]
		return result, found, true
	case Component:
		if v == nil {
			return nil, false, false
		}
		result, found = v[key]
		return result, found, true
	}

	rv, ok := mapValue(value)
	if !ok {
		return nil, false, false
	}
	entry := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !entry.IsValid() {
		return nil, false, true
	}
	return entry.Interface(), true, true
}

// mapValue unwraps pointers and returns the reflected map when value is a
// non-nil map keyed by a string kind.
func mapValue(value any) (reflect.Value, bool) {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.IsNil() {
		return reflect.Value{}, false
	}
	if rv.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return rv, true
}

// asObject returns a map[string]any view of an object-like value. Maps that
// are already map[string]any are returned without copying.
func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, v != nil
	case Schema:
		return map[string]any(v), v != nil
	case Component:
		return map[string]any(v), v != nil
	}
	rv, ok := mapValue(value)
	if !ok {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func toComponent(value any) (Component, bool) {
	obj, ok := asObject(value)
	if !ok {
		return nil, false
	}
	return Component(obj), true
}

// asSequence returns the elements of an ordered sequence. Strings, byte
// slices and raw JSON are not sequences.
func asSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	case []Component:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = item
		}
		return out, true
	case []byte, json.RawMessage:
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
