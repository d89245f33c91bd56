package domain

import (
	"encoding/json"
	"strconv"
)

// lookupPath walks nested objects along keys. It reports false when any
// level is missing, null, or not an object.
func lookupPath(v any, keys ...string) (any, bool) {
	cur := v
	for _, k := range keys {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		next, ok := obj[k]
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// stringAt returns the scalar at keys rendered as text, or def when the
// path is absent or ends in an object or array.
func stringAt(v any, def string, keys ...string) string {
	raw, ok := lookupPath(v, keys...)
	if !ok {
		return def
	}
	s, ok := scalarString(raw)
	if !ok {
		return def
	}
	return s
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case Document:
		return o, true
	default:
		return nil, false
	}
}

func asArray(v any) []any {
	a, _ := v.([]any)
	return a
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}
