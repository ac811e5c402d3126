// Package testutil provides shared helpers for handler and service tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lifeline/internal/platform/middleware"
)

// NewJSONRequest builds an *http.Request carrying a JSON-encoded body and the
// matching Content-Type header. It fails the test on marshal errors so callers
// can keep their arrange blocks flat.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Authed stamps the request context with the identity the auth middleware
// would normally attach, so handlers can be invoked without a real token.
func Authed(r *http.Request, userID string, isAdmin bool) *http.Request {
	ctx := middleware.WithUserID(r.Context(), userID)
	ctx = middleware.WithAdmin(ctx, isAdmin)
	return r.WithContext(ctx)
}

// DecodeJSON unmarshals a recorded response body into out, failing the test on
// malformed JSON.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
}
