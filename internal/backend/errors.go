// ABOUTME: Structured client error for failed backend calls.
// ABOUTME: Carries status, error type and per-field details decoded from the backend envelope.

package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/pyconkr/console/internal/errors"
)

// StatusNoResponse is reported when the request never produced a response.
const StatusNoResponse = -1

// Error types produced on the client side.
const (
	TypeNetwork = "network_error"
	TypeClient  = apierrors.TypeClient
)

// ClientError is returned by every Client method on failure.
type ClientError struct {
	Status int
	Type   string
	Errors []apierrors.DetailedError
	Err    error
}

func newTransportError(err error) *ClientError {
	return &ClientError{
		Status: StatusNoResponse,
		Type:   TypeNetwork,
		Errors: []apierrors.DetailedError{{Code: TypeNetwork, Detail: err.Error()}},
		Err:    err,
	}
}

// decodeClientError builds a ClientError from a non-2xx response. Bodies that
// are not a well-formed envelope keep their raw text as the detail.
func decodeClientError(status int, body []byte) *ClientError {
	var envelope apierrors.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && isEnvelope(envelope) {
		return &ClientError{Status: status, Type: envelope.Type, Errors: envelope.Errors}
	}

	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &ClientError{
		Status: status,
		Type:   TypeClient,
		Errors: []apierrors.DetailedError{{Code: apierrors.ErrInternal, Detail: detail}},
	}
}

func isEnvelope(e apierrors.ErrorResponse) bool {
	if e.Type == "" || e.Errors == nil {
		return false
	}
	for _, d := range e.Errors {
		if d.Code == "" || d.Detail == "" {
			return false
		}
	}
	return true
}

// Error joins the detail strings.
func (e *ClientError) Error() string {
	if d := e.Detail(); d != "" {
		return d
	}
	return "backend request failed"
}

// Detail returns the human-readable detail text, one line per entry.
func (e *ClientError) Detail() string {
	details := make([]string, 0, len(e.Errors))
	for _, d := range e.Errors {
		if d.Detail != "" {
			details = append(details, d.Detail)
		}
	}
	return strings.Join(details, "\n")
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// IsRequiredAuth reports whether the backend rejected the caller's credentials.
func (e *ClientError) IsRequiredAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsNotFound reports a 404 response.
func (e *ClientError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// FieldErrors maps attributed entries to their details.
func (e *ClientError) FieldErrors() map[string]string {
	out := map[string]string{}
	for _, d := range e.Errors {
		if d.Attr != nil && *d.Attr != "" {
			if _, seen := out[*d.Attr]; !seen {
				out[*d.Attr] = d.Detail
			}
		}
	}
	return out
}

// AsClientError unwraps err into a *ClientError.
func AsClientError(err error) (*ClientError, bool) {
	var cerr *ClientError
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}
