package contract

import (
	"fmt"
	"reflect"
	"sort"
)

// FieldMismatch reports a submitted field that the response does not carry
// with the same value.
type FieldMismatch struct {
	Path     string
	Expected any
	Actual   any
	Missing  bool
}

func (e *FieldMismatch) Error() string {
	if e.Missing {
		return fmt.Sprintf("field %s: missing from response (expected %v)", e.Path, e.Expected)
	}
	return fmt.Sprintf("field %s: expected %v (%T), got %v (%T)", e.Path, e.Expected, e.Expected, e.Actual, e.Actual)
}

// Includes checks that every field of expected appears in actual with an
// equal value. Nested objects are compared member by member, so members the
// server adds are tolerated. Fields are visited in sorted order so the
// reported mismatch is stable.
func Includes(expected, actual map[string]any) error {
	return includes("", expected, actual)
}

func includes(prefix string, expected, actual map[string]any) error {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		want := expected[k]
		got, ok := actual[k]
		if !ok {
			return &FieldMismatch{Path: path, Expected: want, Missing: true}
		}
		if wantObj, isObj := asObject(want); isObj {
			gotObj, ok := asObject(got)
			if !ok {
				return &FieldMismatch{Path: path, Expected: want, Actual: got}
			}
			if err := includes(path, wantObj, gotObj); err != nil {
				return err
			}
			continue
		}
		if !valuesEqual(got, want) {
			return &FieldMismatch{Path: path, Expected: want, Actual: got}
		}
	}
	return nil
}

// asObject returns v as a map[string]any. Named map types with string keys
// (fixture.Payload, for one) are converted member by member.
func asObject(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// valuesEqual compares two values, coercing numbers. Values must be the
// same kind (both numeric or both not) to be equal.
func valuesEqual(actual, expected any) bool {
	actualNum, aErr := toFloat64(actual)
	expectedNum, eErr := toFloat64(expected)

	if aErr == nil && eErr == nil {
		return actualNum == expectedNum
	}
	if (aErr == nil) != (eErr == nil) {
		return false
	}
	return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
