package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/campusconnect/internal/domain/models"
)

// NewJSONRequest creates a request whose body is body encoded as JSON.
// A nil body produces an empty request body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// WithIdentityHeaders sets the X-User-* headers for id.
func WithIdentityHeaders(r *http.Request, id models.Identity) *http.Request {
	r.Header.Set("X-User-Id", id.ExternalID)
	r.Header.Set("X-User-Email", id.Email)
	r.Header.Set("X-User-Name", id.DisplayName)
	return r
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d (body: %s)", r.Code, expected, r.Body.String())
	}
}

// AssertKind checks the "kind" of an error response.
func (r *ResponseRecorder) AssertKind(t testing.TB, kind string) {
	t.Helper()
	var body struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &body); err != nil {
		t.Errorf("decode error body: %v", err)
		return
	}
	if body.Kind != kind {
		t.Errorf("error kind: got %q, want %q", body.Kind, kind)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}

// Decode unmarshals the response body into v.
func (r *ResponseRecorder) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, r.Body.String())
	}
}
