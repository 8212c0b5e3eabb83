// ABOUTME: Backend-compatible JSON error envelope and HTTP helpers.
// ABOUTME: Shared by the development backend and the console's JSON endpoints.

package errors

import (
	"encoding/json"
	"net/http"
)

// DetailedError is one entry of an error envelope.
//
// Attr names the offending field, or is nil when the error applies to the
// whole request.
type DetailedError struct {
	Code   string  `json:"code"`
	Detail string  `json:"detail"`
	Attr   *string `json:"attr"`
}

// ErrorResponse is the error envelope the conference backend returns:
//
//	{"type": "validation_error", "errors": [{"code": "required", "detail": "...", "attr": "name"}]}
type ErrorResponse struct {
	Type   string          `json:"type"`
	Errors []DetailedError `json:"errors"`
}

// Error types.
const (
	TypeValidation = "validation_error"
	TypeClient     = "client_error"
	TypeServer     = "server_error"
)

// Error codes.
const (
	ErrInvalid          = "invalid"
	ErrRequired         = "required"
	ErrParse            = "parse_error"
	ErrNotFound         = "not_found"
	ErrNotAuthenticated = "not_authenticated"
	ErrPermissionDenied = "permission_denied"
	ErrMethodNotAllowed = "method_not_allowed"
	ErrInternal         = "error"
)

// Attr returns a pointer to name for use in DetailedError.
func Attr(name string) *string {
	return &name
}

// WriteError writes a single-entry envelope. The type is derived from status.
func WriteError(w http.ResponseWriter, status int, code, detail string) {
	writeErrorResponse(w, status, ErrorResponse{
		Type:   typeForStatus(status),
		Errors: []DetailedError{{Code: code, Detail: detail}},
	})
}

// WriteErrorWithAttr writes a single-entry envelope attributed to a field.
func WriteErrorWithAttr(w http.ResponseWriter, status int, code, detail, attr string) {
	writeErrorResponse(w, status, ErrorResponse{
		Type:   typeForStatus(status),
		Errors: []DetailedError{{Code: code, Detail: detail, Attr: Attr(attr)}},
	})
}

// WriteValidationErrors writes a 400 validation envelope with one entry per
// failing field.
func WriteValidationErrors(w http.ResponseWriter, errs []DetailedError) {
	writeErrorResponse(w, http.StatusBadRequest, ErrorResponse{
		Type:   TypeValidation,
		Errors: errs,
	})
}

func typeForStatus(status int) string {
	switch {
	case status >= 500:
		return TypeServer
	case status == http.StatusBadRequest:
		return TypeValidation
	default:
		return TypeClient
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	if resp.Errors == nil {
		resp.Errors = []DetailedError{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
