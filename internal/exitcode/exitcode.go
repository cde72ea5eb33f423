package exitcode

import (
	"os"

	"github.com/trilhalab/portalctl/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication failure
	AuthError = 3

	// AccessDenied indicates an authorization failure (authenticated but not allowed)
	AccessDenied = 4

	// SessionExpired indicates the server invalidated the current session
	SessionExpired = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.CodeOf(err) {
	case errors.ErrCodeNotAuthenticated, errors.ErrCodeLoginFailed, errors.ErrCodeInvalidCredentials:
		return AuthError
	case errors.ErrCodeManagerRequired:
		return AccessDenied
	case errors.ErrCodeSessionExpired:
		return SessionExpired
	case errors.ErrCodeInvalidURL, errors.ErrCodeRequestFailed:
		return NetworkError
	case errors.ErrCodeConfigInvalid:
		return UsageError
	}

	return GeneralError
}
