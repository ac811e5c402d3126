package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dErrors "lifeline/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeConflict, "request already reviewed"))

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})

	t.Run("partial failure strips the wrapped cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		cause := errors.New("pq: connection reset by peer")
		WriteError(w, dErrors.Wrap(cause, dErrors.CodePartialFailure, "inventory applied but status reset failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "partial_failure" {
			t.Fatalf("expected error code partial_failure, got %q", body["error"])
		}
		if body["error_description"] != "inventory applied but status reset failed" {
			t.Fatalf("expected domain message only, got %q", body["error_description"])
		}
	})

	t.Run("timeout strips the wrapped cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		cause := errors.New("dial tcp 10.0.0.5:5432: i/o timeout")
		WriteError(w, dErrors.Wrap(cause, dErrors.CodeTimeout, "request timed out"))

		if w.Code != http.StatusGatewayTimeout {
			t.Fatalf("expected status %d, got %d", http.StatusGatewayTimeout, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error_description"] != "request timed out" {
			t.Fatalf("expected domain message only, got %q", body["error_description"])
		}
	})

	t.Run("non-domain error treated as internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("raw store failure"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for unexpected errors")
		}
	})
}
