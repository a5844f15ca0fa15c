package sessions

import (
	"reflect"
	"slices"
)

// MergeMeta merges incoming into a copy of base and returns the copy. Keys
// missing from base are deep copied from incoming, keys holding maps on both
// sides are merged recursively, and on any other conflict the base value is
// kept. Neither argument is modified and the result shares no maps or slices
// with them.
//
// Nested maps with string keys and slices of any type are normalised to
// map[string]any and []any in the result.
func MergeMeta(base, incoming map[string]any) map[string]any {
	result := CopyMeta(base)
	mergeInto(result, incoming)
	return result
}

// mergeInto applies the MergeMeta rule in place. dst must be owned by the
// caller: every nested map reachable from it is a private map[string]any.
func mergeInto(dst, src map[string]any) {
	for key, incoming := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = copyValue(incoming)
			continue
		}
		existingMap, existingIsMap := existing.(map[string]any)
		incomingMap, incomingIsMap := asMap(incoming)
		if existingIsMap && incomingIsMap {
			mergeInto(existingMap, incomingMap)
		}
		// Earliest value wins.
	}
}

// CopyMeta returns a deep copy of meta. A nil map yields an empty, non-nil map.
func CopyMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for key, value := range meta {
		out[key] = copyValue(value)
	}
	return out
}

// asMap returns value as a map[string]any when it is any map keyed by strings.
// Maps of other types are converted to a fresh copy.
func asMap(value any) (map[string]any, bool) {
	if m, ok := value.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	return copyValue(value).(map[string]any), true
}

func copyValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return CopyMeta(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	case []byte:
		return slices.Clone(v)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
			return value
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = copyValue(iter.Value().Interface())
		}
		return out
	case reflect.Slice:
		if rv.IsNil() {
			return value
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = copyValue(rv.Index(i).Interface())
		}
		return out
	default:
		return value
	}
}
