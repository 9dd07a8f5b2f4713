package fixture

import (
	"fmt"
	"strings"
)

// Payload is a request body built for one case. Nested objects are
// map[string]any.
type Payload map[string]any

// Clone returns a deep copy, so a variant can be derived without touching
// the original.
func (p Payload) Clone() Payload {
	return Payload(cloneMap(p))
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Payload:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Payload:
		return t, true
	}
	return nil, false
}

// Lookup returns the value at a dotted path such as "address.geo.lat".
func (p Payload) Lookup(path string) (any, bool) {
	var cur any = map[string]any(p)
	for _, key := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set assigns value at a dotted path. Missing intermediate objects are
// created; an intermediate that exists but is not an object is an error.
func (p Payload) Set(path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	keys := strings.Split(path, ".")
	cur := map[string]any(p)
	for i, key := range keys[:len(keys)-1] {
		next, exists := cur[key]
		if !exists {
			child := map[string]any{}
			cur[key] = child
			cur = child
			continue
		}
		obj, ok := asObject(next)
		if !ok {
			return fmt.Errorf("cannot set %q: %q is %T, not an object", path, strings.Join(keys[:i+1], "."), next)
		}
		cur = obj
	}
	cur[keys[len(keys)-1]] = value
	return nil
}
