package store

import "reflect"

// Clone deep-copies a JSON-safe value. Records are map[string]any,
// lists are []any, everything else is treated as an immutable scalar
// and returned as-is.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	default:
		return value
	}
}

// CloneRecord deep-copies a slice record.
func CloneRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	cloned, _ := Clone(record).(map[string]any)
	return cloned
}

// sameValue reports whether a stored value and an incoming value are
// the same for change detection. Scalars compare by equality;
// composites compare by reference so a record handed back unchanged
// does not count as a write, while a freshly built equal copy does.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		if rb.Kind() != ra.Kind() {
			return false
		}
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		if rb.Kind() != reflect.Slice {
			return false
		}
		if ra.Len() != rb.Len() {
			return false
		}
		if ra.Len() == 0 {
			return true
		}
		return ra.Pointer() == rb.Pointer()
	default:
		if !ra.Type().Comparable() || !rb.Type().Comparable() {
			return false
		}
		return a == b
	}
}
