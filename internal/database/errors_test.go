package database

import (
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/orgkb/pkg/apperror"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name: "unreachable store surfaces as 503",
			err: &net.OpError{
				Op:  "dial",
				Net: "tcp",
				Err: errors.New("connect: connection refused"),
			},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "store_unavailable",
		},
		{
			name:       "dropped connection surfaces as 503",
			err:        errors.New("FATAL: terminating connection due to administrator command (SQLSTATE 08006)"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "store_unavailable",
		},
		{
			name:       "query error stays a 500",
			err:        errors.New(`ERROR: column "nope" does not exist (SQLSTATE 42703)`),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "database_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err)
			require.Error(t, wrapped)

			var appErr *apperror.Error
			require.ErrorAs(t, wrapped, &appErr)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.ErrorIs(t, appErr.Unwrap(), tt.err)
		})
	}
}

func TestWrapErrorNil(t *testing.T) {
	assert.NoError(t, WrapError(nil))
}
