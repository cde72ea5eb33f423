package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeNotAuthenticated   ErrorCode = "AUTH-001"
	ErrCodeLoginFailed        ErrorCode = "AUTH-002"
	ErrCodeInvalidCredentials ErrorCode = "AUTH-003"

	// Authorization errors (AUTHZ-001 to AUTHZ-099)
	ErrCodeManagerRequired ErrorCode = "AUTHZ-001"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionExpired ErrorCode = "SESSION-001"
	ErrCodeSessionCorrupt ErrorCode = "SESSION-002"

	// API errors (API-001 to API-099)
	ErrCodeInvalidURL      ErrorCode = "API-001"
	ErrCodeRequestFailed   ErrorCode = "API-002"
	ErrCodeResponseDecode  ErrorCode = "API-003"
	ErrCodeRequestEncoding ErrorCode = "API-004"

	// State/file errors (IO-001 to IO-099)
	ErrCodeStateDirFailed   ErrorCode = "IO-001"
	ErrCodeStateWriteFailed ErrorCode = "IO-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
)

// PortalError represents an enhanced error with code, suggestions, and documentation
type PortalError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *PortalError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *PortalError) Unwrap() error {
	return e.Cause
}

// New creates a new PortalError
func New(code ErrorCode, message string) *PortalError {
	return &PortalError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new PortalError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *PortalError {
	return &PortalError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *PortalError) WithSuggestion(suggestion string) *PortalError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *PortalError) WithDocs(url string) *PortalError {
	e.DocsURL = url
	return e
}

// CodeOf returns the error code carried by err, or "" when err is not a
// PortalError.
func CodeOf(err error) ErrorCode {
	var pe *PortalError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// Common error constructors for frequently used errors

// NewNotAuthenticatedError indicates that no session is present.
func NewNotAuthenticatedError() *PortalError {
	return New(ErrCodeNotAuthenticated, "not authenticated").
		WithSuggestion("Run 'portalctl login' to authenticate")
}

// NewManagerRequiredError indicates a session exists but lacks the manager role.
// Distinct from NewNotAuthenticatedError: the caller is known, just not allowed.
func NewManagerRequiredError() *PortalError {
	return New(ErrCodeManagerRequired, "access denied: manager role required").
		WithSuggestion("Ask a portal manager to grant you the manager role")
}

// NewLoginFailedError creates a login failure carrying the server message.
func NewLoginFailedError(message string) *PortalError {
	if message == "" {
		message = "login failed"
	}
	return New(ErrCodeLoginFailed, message).
		WithSuggestion("Check your email and password").
		WithSuggestion("Run 'portalctl health' to verify the portal is reachable")
}

// NewSessionExpiredError indicates the server rejected the session; the
// local slot has already been cleared when this is returned.
func NewSessionExpiredError() *PortalError {
	return New(ErrCodeSessionExpired, "session expired, please log in again").
		WithSuggestion("Run 'portalctl login' to start a new session")
}

// NewInvalidURLError names the malformed target URL before any network I/O.
func NewInvalidURLError(url string, cause error) *PortalError {
	return Wrap(ErrCodeInvalidURL, fmt.Sprintf("invalid request URL: %s", url), cause).
		WithSuggestion("Check the --api-url flag or PORTAL_API_URL environment variable")
}

// NewRequestFailedError creates an API failure carrying the server-provided
// message, falling back to the HTTP status.
func NewRequestFailedError(status int, message string) *PortalError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return New(ErrCodeRequestFailed, message)
}

// NewResponseDecodeError indicates the response body was not valid JSON.
func NewResponseDecodeError(cause error) *PortalError {
	return Wrap(ErrCodeResponseDecode, "failed to decode response body", cause)
}

// NewStateDirError indicates the state directory could not be prepared.
func NewStateDirError(path string, cause error) *PortalError {
	return Wrap(ErrCodeStateDirFailed, fmt.Sprintf("failed to prepare state directory: %s", path), cause).
		WithSuggestion("Check directory permissions").
		WithSuggestion("Set PORTAL_STATE_DIR to a writable location")
}
