package rtdb

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrPermissionDenied is matched by errors for 401 and 403 responses.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidPath is returned for paths containing characters the database rejects.
	ErrInvalidPath = errors.New("invalid database path")

	// ErrStreamCanceled is returned when the server cancels a stream.
	ErrStreamCanceled = errors.New("stream canceled by server")

	// ErrAuthRevoked is returned when the stream credential expires or is revoked.
	ErrAuthRevoked = errors.New("stream auth revoked")

	// ErrStreamClosed is returned when the server closes the stream connection.
	ErrStreamClosed = errors.New("stream closed")
)

// Error is a non-2xx response from the database.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("rtdb: %d %s", e.StatusCode, e.Message)
}

// Is reports 401/403 responses as ErrPermissionDenied.
func (e *Error) Is(target error) bool {
	if target != ErrPermissionDenied {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// newError decodes the {"error": "..."} body the database returns on failure.
func newError(statusCode int, body []byte) *Error {
	msg := strings.TrimSpace(gjson.GetBytes(body, "error").String())
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &Error{StatusCode: statusCode, Message: msg}
}
