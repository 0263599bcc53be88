package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup walks a dot-separated path ("data.priceModule.minAmount.value")
// through nested maps and slices. Numeric segments index into slices.
// Marketplaces have shipped several incompatible payload schemas over
// time, so callers hold an ordered list of known paths per field and take
// the first that resolves.
func Lookup(doc any, path string) (any, bool) {
	current := doc
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// LookupString resolves the first path yielding a non-empty string.
// Numeric leaves are rendered as strings since payload schemas are not
// consistent about quoting.
func LookupString(doc any, paths ...string) (string, bool) {
	for _, path := range paths {
		value, ok := Lookup(doc, path)
		if !ok {
			continue
		}
		if s := Stringify(value); s != "" {
			return s, true
		}
	}
	return "", false
}

// LookupSlice resolves the first path yielding a non-empty slice.
func LookupSlice(doc any, paths ...string) ([]any, bool) {
	for _, path := range paths {
		value, ok := Lookup(doc, path)
		if !ok {
			continue
		}
		if list, ok := value.([]any); ok && len(list) > 0 {
			return list, true
		}
	}
	return nil, false
}

// Stringify renders a scalar payload leaf as text. Non-scalar values
// yield "" so a partially resolved path is treated as absent.
func Stringify(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return ""
	}
}

// StringifyKey is Stringify for map keys that must never collide: it
// falls back to a positional synthetic when the leaf is not scalar.
func StringifyKey(value any, position int) string {
	if s := Stringify(value); s != "" {
		return s
	}
	return fmt.Sprintf("attr_%d", position)
}
