package exitcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trilhalab/portalctl/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"plain error", fmt.Errorf("boom"), GeneralError},
		{"not authenticated", errors.NewNotAuthenticatedError(), AuthError},
		{"login failed", errors.NewLoginFailedError("bad credentials"), AuthError},
		{"manager required", errors.NewManagerRequiredError(), AccessDenied},
		{"session expired", errors.NewSessionExpiredError(), SessionExpired},
		{"invalid url", errors.NewInvalidURLError("http://", nil), NetworkError},
		{"request failed", errors.NewRequestFailedError(500, ""), NetworkError},
		{"wrapped session expired", fmt.Errorf("api: %w", errors.NewSessionExpiredError()), SessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineExitCode(tt.err))
		})
	}
}
