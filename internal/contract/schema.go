// Package contract checks response bodies against the expected shape of
// each service: exact key sets, field inclusion, messages, and the outcome
// of negative-path and delete calls.
package contract

import (
	"fmt"
	"sort"
	"strings"
)

// Schema is the exact top-level key set an entity must expose.
type Schema struct {
	Name string
	Keys []string
}

var (
	// ServeRestUser is the /usuarios entity.
	ServeRestUser = Schema{
		Name: "serverest.usuario",
		Keys: []string{"_id", "nome", "email", "password", "administrador"},
	}
	// PlaceholderUser is the JSONPlaceholder /users entity.
	PlaceholderUser = Schema{
		Name: "jsonplaceholder.user",
		Keys: []string{"id", "name", "username", "email", "address", "phone", "website", "company"},
	}
)

// KeySetViolation reports an entity whose keys differ from its schema.
// Index is the element position for list checks, or -1.
type KeySetViolation struct {
	Schema  string
	Index   int
	Missing []string
	Extra   []string
}

func (e *KeySetViolation) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Extra, ", "))
	}
	where := e.Schema
	if e.Index >= 0 {
		where = fmt.Sprintf("%s[%d]", e.Schema, e.Index)
	}
	if len(parts) == 0 {
		return where + ": not an object"
	}
	return fmt.Sprintf("%s: %s", where, strings.Join(parts, "; "))
}

// ExactKeys checks that obj has exactly the schema's keys.
func ExactKeys(obj map[string]any, s Schema) error {
	return exactKeys(obj, s, -1)
}

func exactKeys(obj map[string]any, s Schema, index int) error {
	want := make(map[string]bool, len(s.Keys))
	for _, k := range s.Keys {
		want[k] = true
	}
	v := &KeySetViolation{Schema: s.Name, Index: index}
	for _, k := range s.Keys {
		if _, ok := obj[k]; !ok {
			v.Missing = append(v.Missing, k)
		}
	}
	for k := range obj {
		if !want[k] {
			v.Extra = append(v.Extra, k)
		}
	}
	if len(v.Missing) == 0 && len(v.Extra) == 0 {
		return nil
	}
	sort.Strings(v.Missing)
	sort.Strings(v.Extra)
	return v
}

// ExactKeysAll checks every element of items and reports the first
// violation. A non-object element is a violation.
func ExactKeysAll(items []any, s Schema) error {
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return &KeySetViolation{Schema: s.Name, Index: i}
		}
		if err := exactKeys(obj, s, i); err != nil {
			return err
		}
	}
	return nil
}
