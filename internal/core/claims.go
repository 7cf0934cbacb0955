package core

import (
	"encoding/json"
	"math"
)

// String returns claims[key] when it is a string.
func String(claims map[string]any, key string) (string, bool) {
	s, ok := claims[key].(string)
	return s, ok
}

// Int64 returns claims[key] as an int64 when it holds an integral number.
func Int64(claims map[string]any, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// StringSlice returns claims[key] as a list of strings. A single string is
// returned as a one-element list. ok is false when the claim is absent or
// holds anything else.
func StringSlice(claims map[string]any, key string) ([]string, bool) {
	return AsStringSlice(claims[key])
}

// AsStringSlice converts a string, []string or []any of strings.
func AsStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
