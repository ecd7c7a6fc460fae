package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	TraceID string         `json:"trace_id,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes a structured error body.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	WriteJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
		TraceID: w.Header().Get("X-Trace-ID"),
	})
}

// WriteError maps err to a status code and writes it. Non-service errors are
// reported as internal errors without leaking their text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := svcerrors.GetServiceError(err)
	if svcErr == nil {
		svcErr = svcerrors.Internal("internal error", err)
	}
	WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}

// DecodeJSON decodes the request body into v, writing a 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil {
		BadRequest(w, "request body required")
		return false
	}
	body, err := ReadAllStrict(r.Body, 1<<20)
	if err != nil {
		BadRequest(w, "request body too large or unreadable")
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		BadRequest(w, "request body required")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		BadRequest(w, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	WriteErrorResponse(w, nil, http.StatusBadRequest, string(svcerrors.CodeInvalidInput), message, nil)
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "not found"
	}
	WriteErrorResponse(w, nil, http.StatusNotFound, string(svcerrors.CodeNotFound), message, nil)
}

// Unauthorized writes a 401 with the given message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	WriteErrorResponse(w, nil, http.StatusUnauthorized, string(svcerrors.CodeUnauthorized), message, nil)
}

// InternalError writes a 500 with the given message.
func InternalError(w http.ResponseWriter, message string) {
	WriteErrorResponse(w, nil, http.StatusInternalServerError, string(svcerrors.CodeInternal), message, nil)
}
