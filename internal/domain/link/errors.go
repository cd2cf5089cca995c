package link

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates a missing or rejected API key.
	ErrUnauthorized = errors.New("unauthorized: invalid or missing API key")
	// ErrForbidden indicates the key may not access the resource.
	ErrForbidden = errors.New("forbidden: access denied")
	// ErrNotFound indicates the requested link or visit doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidResponse indicates the registry returned a malformed payload.
	ErrInvalidResponse = errors.New("invalid server response")
	// ErrTransport indicates a connectivity failure or timeout.
	ErrTransport = errors.New("network error")
	// ErrInvalidInput indicates a create request is missing required fields.
	ErrInvalidInput = errors.New("invalid link input")
)

// ServerError is any other non-2xx registry response.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}
