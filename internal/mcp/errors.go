package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganot/applinks/internal/applinks"
	"github.com/ganot/applinks/internal/domain/link"
	"github.com/ganot/applinks/internal/domain/recovery"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to
// INTERNAL with the original message.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var serverErr *link.ServerError
	switch {
	case errors.Is(err, link.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "link or visit not found", RecoveryHint: "Check the id"}
	case errors.Is(err, link.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "invalid or missing API key", RecoveryHint: "Set APPLINKS_API_KEY to a pk_ key"}
	case errors.Is(err, link.ErrForbidden):
		return &APIError{Code: "FORBIDDEN", Message: "access denied"}
	case errors.Is(err, link.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, link.ErrInvalidResponse):
		return &APIError{Code: "INVALID_RESPONSE", Message: "registry returned a malformed response"}
	case errors.Is(err, link.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return &APIError{Code: "TRANSPORT", Message: err.Error(), RecoveryHint: "Check connectivity and retry"}
	case errors.As(err, &serverErr):
		return &APIError{Code: "SERVER_ERROR", Message: serverErr.Message, Details: map[string]int{"status": serverErr.Code}}
	case errors.Is(err, recovery.ErrAlreadyProcessed):
		return &APIError{Code: "ALREADY_PROCESSED", Message: "deferred link already processed", RecoveryHint: "Call reset_state to replay"}
	case errors.Is(err, recovery.ErrExpired):
		return &APIError{Code: "EXPIRED", Message: "deferred link expired"}
	case errors.Is(err, recovery.ErrNoLinkData):
		return &APIError{Code: "NO_LINK_DATA", Message: "visit carries no link"}
	case errors.Is(err, applinks.ErrClosed):
		return &APIError{Code: "CLOSED", Message: "sdk closed"}
	default:
		return &APIError{Code: "INTERNAL", Message: err.Error()}
	}
}
