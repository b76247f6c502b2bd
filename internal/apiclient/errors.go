package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	// Message is the server's explanation when it sent one, otherwise the
	// status text.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	msg := messageFrom(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Method: method, Path: path, StatusCode: status, Body: body, Message: msg}
}

// messageFrom understands {"error": "..."}, {"detail": "..."}, and field
// error maps like {"email": ["already used"]}.
func messageFrom(body []byte) string {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	for _, key := range []string{"error", "detail"} {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	if s := firstString(m["non_field_errors"]); s != "" {
		return s
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := firstString(m[k]); s != "" {
			return fieldLabel(k) + ": " + s
		}
	}
	return ""
}

func firstString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func fieldLabel(key string) string {
	switch key {
	case "password1":
		return "Password"
	case "password2":
		return "Password confirmation"
	}
	label := strings.ReplaceAll(key, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
