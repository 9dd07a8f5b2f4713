package contract

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// MessageError reports a message field that is absent or different.
type MessageError struct {
	Field string
	Want  string
	Got   string
	Found bool
}

func (e *MessageError) Error() string {
	if !e.Found {
		return fmt.Sprintf("response has no %q field (want %q)", e.Field, e.Want)
	}
	return fmt.Sprintf("%s: want %q, got %q", e.Field, e.Want, e.Got)
}

// MessageEquals checks that body[field] equals want. field is a gjson path.
func MessageEquals(body []byte, field, want string) error {
	res := gjson.GetBytes(body, field)
	if !res.Exists() {
		return &MessageError{Field: field, Want: want}
	}
	if res.String() != want {
		return &MessageError{Field: field, Want: want, Got: res.String(), Found: true}
	}
	return nil
}

// MessageContains checks that body[field] contains substr.
func MessageContains(body []byte, field, substr string) error {
	res := gjson.GetBytes(body, field)
	if !res.Exists() {
		return &MessageError{Field: field, Want: substr}
	}
	if !strings.Contains(res.String(), substr) {
		return &MessageError{Field: field, Want: substr, Got: res.String(), Found: true}
	}
	return nil
}

// AnyMessageContains is MessageContains over several candidate fields; it
// passes if any of them contains substr. ServeRest reports field errors
// under the field name ("email") rather than "message".
func AnyMessageContains(body []byte, substr string, fields ...string) error {
	var first error
	for _, f := range fields {
		err := MessageContains(body, f, substr)
		if err == nil {
			return nil
		}
		if first == nil {
			first = err
		}
	}
	return first
}
