package template

import (
	"reflect"
	"strings"
)

// Context supplies the data for a single render. Values are read through
// dotted key paths ("notification.title"); nested maps and exported struct
// fields both resolve. The renderer never mutates a Context.
type Context map[string]any

// missing is the internal marker for a path that resolved to nothing. It
// stringifies to the empty string and is falsy, so plain references degrade
// gracefully while filters like default and required can still detect it.
type missingValue struct{}

// Lookup resolves a dotted path against the context. The boolean reports
// whether every segment resolved; on failure the value is nil.
func (c Context) Lookup(path string) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = map[string]any(c)
	for _, segment := range segments {
		next, ok := lookupSegment(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func lookupSegment(value any, key string) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case Context:
		out, ok := v[key]
		return out, ok
	case map[string]any:
		out, ok := v[key]
		return out, ok
	case map[string]string:
		out, ok := v[key]
		return out, ok
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		item := rv.MapIndex(reflect.ValueOf(key))
		if !item.IsValid() {
			return nil, false
		}
		return item.Interface(), true
	case reflect.Struct:
		field := rv.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, strings.ReplaceAll(key, "_", ""))
		})
		if !field.IsValid() || !field.CanInterface() {
			return nil, false
		}
		return field.Interface(), true
	}
	return nil, false
}

// Truthy reports whether a resolved value gates a conditional block open:
// non-empty strings, non-zero numbers, true booleans, and non-empty
// collections count as true. nil and unresolved paths count as false.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case missingValue:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case SafeString:
		return v != ""
	case int:
		return v != 0
	case int8:
		return v != 0
	case int16:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case uint:
		return v != 0
	case uint8:
		return v != 0
	case uint16:
		return v != 0
	case uint32:
		return v != 0
	case uint64:
		return v != 0
	case float32:
		return v != 0
	case float64:
		return v != 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
