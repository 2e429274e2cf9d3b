package filter

import (
	"reflect"
	"strconv"
	"strings"
)

// IsEmpty reports whether v carries no filtering intent: nil, a blank
// string, a zero number, or a list whose every element is itself empty.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		for _, s := range val {
			if !IsEmpty(s) {
				return false
			}
		}
		return true
	case []int64:
		for _, n := range val {
			if n != 0 {
				return false
			}
		}
		return true
	case []any:
		for _, item := range val {
			if !IsEmpty(item) {
				return false
			}
		}
		return true
	case bool:
		return !val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !IsEmpty(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Map:
		return rv.Len() == 0
	default:
		return rv.IsZero()
	}
}

// String returns v as a trimmed string.
func String(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		return s, s != ""
	case []byte:
		s := strings.TrimSpace(string(val))
		return s, s != ""
	}
	return "", false
}

// ID returns v as a positive integer id. Numeric strings are accepted.
func ID(v any) (int64, bool) {
	var id int64
	switch val := v.(type) {
	case int:
		id = int64(val)
	case int32:
		id = int64(val)
	case int64:
		id = val
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		id = parsed
	default:
		return 0, false
	}
	return id, id > 0
}

// List flattens v into its non-empty elements.
func List(v any) []any {
	var out []any
	switch val := v.(type) {
	case []string:
		for _, s := range val {
			if !IsEmpty(s) {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case []int64:
		for _, n := range val {
			if n != 0 {
				out = append(out, n)
			}
		}
	case []any:
		for _, item := range val {
			if !IsEmpty(item) {
				out = append(out, item)
			}
		}
	default:
		if !IsEmpty(v) {
			out = append(out, v)
		}
	}
	return out
}

// IDs flattens v into positive integer ids, dropping anything else.
func IDs(v any) []any {
	var out []any
	for _, item := range List(v) {
		if id, ok := ID(item); ok {
			out = append(out, id)
		}
	}
	return out
}

// Strings flattens v into non-blank strings.
func Strings(v any) []any {
	var out []any
	for _, item := range List(v) {
		if s, ok := String(item); ok {
			out = append(out, s)
		}
	}
	return out
}
