package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// Get returns the value at a gjson path, e.g. "usuarios.0._id".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Object decodes the body as a JSON object.
func (r *Response) Object() (map[string]any, error) {
	var m map[string]any
	if err := r.JSON(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("response body is not a JSON object: %s", truncate(r.Body))
	}
	return m, nil
}

// Array decodes the array at path. An empty path means the whole body.
func (r *Response) Array(path string) ([]any, error) {
	raw := r.Body
	if path != "" {
		res := r.Get(path)
		if !res.Exists() {
			return nil, fmt.Errorf("field %q not found in response", path)
		}
		raw = []byte(res.Raw)
	}
	var a []any
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("field %q is not an array: %w", path, err)
	}
	if a == nil {
		return nil, fmt.Errorf("field %q is null", path)
	}
	return a, nil
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}
