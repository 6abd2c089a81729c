package provider

import (
	"fmt"

	"github.com/v2kk/stackctl/internal/resource"
)

// StringProp extracts a required string property.
func StringProp(props resource.Properties, key string) (string, error) {
	v, ok := props[key]
	if !ok {
		return "", fmt.Errorf("missing required property %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %q: expected string, got %T", key, v)
	}
	return s, nil
}

// StringPropOr extracts an optional string property with a default.
func StringPropOr(props resource.Properties, key, def string) string {
	if v, ok := props[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// BoolProp extracts an optional bool property, false when absent.
func BoolProp(props resource.Properties, key string) bool {
	if v, ok := props[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// IntProp extracts an optional int property with a default.
func IntProp(props resource.Properties, key string, def int) int {
	if v, ok := props[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int32:
			return int(n)
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}

// StringMapProp extracts an optional string-valued map property.
func StringMapProp(props resource.Properties, key string) (map[string]string, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	out := make(map[string]string)
	switch m := v.(type) {
	case map[string]string:
		for k, s := range m {
			out[k] = s
		}
	case resource.Properties:
		for k, raw := range m {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("property %q: entry %q is %T, expected string", key, k, raw)
			}
			out[k] = s
		}
	case map[string]any:
		for k, raw := range m {
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("property %q: entry %q is %T, expected string", key, k, raw)
			}
			out[k] = s
		}
	default:
		return nil, fmt.Errorf("property %q: expected map, got %T", key, v)
	}
	return out, nil
}

// SliceProp extracts an optional list property.
func SliceProp(props resource.Properties, key string) ([]any, error) {
	v, ok := props[key]
	if !ok {
		return nil, nil
	}
	s, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("property %q: expected list, got %T", key, v)
	}
	return s, nil
}
