package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nhle/mailterm/internal/notice"
)

// Error types sent by the server in the "type" field of a failure payload.
const (
	TypeSuccess = "success"
	TypeDanger  = "danger"
	TypeWarning = "warning"
	TypeInfo    = "info"
	TypeError   = "error"
)

// Error is a failed request. Status is zero when the server was never
// reached.
type Error struct {
	Status  int
	Type    string
	Message string

	cause error
}

// errorPayload is the JSON body of a failed request.
type errorPayload struct {
	Type         string `json:"type"`
	ErrorMessage string `json:"errorMessage"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Severity maps the server's error type onto a notice slot.
func (e *Error) Severity() notice.Severity {
	return notice.ParseSeverity(e.Type)
}

// Unauthorized reports whether the server rejected the credentials.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsAuthError reports whether err (or any error in its chain) is an
// authentication failure.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// decodeError turns a non-2xx response into an *Error. A body that is not a
// well-formed failure payload still yields an error carrying the status.
func decodeError(status int, body []byte) *Error {
	var p errorPayload
	if json.Unmarshal(body, &p) == nil && p.ErrorMessage != "" {
		typ := p.Type
		if typ == "" {
			typ = TypeDanger
		}
		return &Error{Status: status, Type: typ, Message: p.ErrorMessage}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" || len(msg) > 200 || strings.HasPrefix(msg, "<") {
		msg = http.StatusText(status)
	}
	return &Error{
		Status:  status,
		Type:    TypeDanger,
		Message: fmt.Sprintf("server error (%d): %s", status, msg),
	}
}
