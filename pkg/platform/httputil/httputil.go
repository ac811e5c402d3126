// Package httputil centralizes JSON response and error envelope rendering so
// every handler translates domain errors the same way.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "lifeline/pkg/domain-errors"
)

// statusByCode maps domain error codes to HTTP status codes.
var statusByCode = map[dErrors.Code]int{
	dErrors.CodeUnauthorized:   http.StatusUnauthorized,
	dErrors.CodeForbidden:      http.StatusForbidden,
	dErrors.CodeNotFound:       http.StatusNotFound,
	dErrors.CodeConflict:       http.StatusConflict,
	dErrors.CodeBadRequest:     http.StatusBadRequest,
	dErrors.CodeInvalidInput:   http.StatusBadRequest,
	dErrors.CodeValidation:     http.StatusBadRequest,
	dErrors.CodeTimeout:        http.StatusGatewayTimeout,
	dErrors.CodePartialFailure: http.StatusInternalServerError,
	dErrors.CodeInternal:       http.StatusInternalServerError,
}

// ToHTTPStatus converts a domain error code to an HTTP status code.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorEnvelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteError renders err as a JSON error envelope. Internal errors omit the
// description, and other 5xx-class codes surface only the domain message
// with the wrapped cause stripped, so backing-store details never leak to
// callers. Client-error codes keep their full message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	envelope := errorEnvelope{Error: string(code)}
	switch {
	case code == dErrors.CodeInternal:
	case ToHTTPStatus(code) >= http.StatusInternalServerError:
		envelope.ErrorDescription = dErrors.MessageOf(err)
	default:
		envelope.ErrorDescription = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(envelope)
}

// WriteJSON renders v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
