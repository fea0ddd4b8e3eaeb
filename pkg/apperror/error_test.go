package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without internal error",
			err:  New(http.StatusNotFound, "not_found", "Resource not found"),
			want: "not_found: Resource not found",
		},
		{
			name: "with internal error",
			err:  New(http.StatusInternalServerError, "database_error", "Database operation failed").WithInternal(errors.New("connection refused")),
			want: "database_error: Database operation failed (connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("inner failure")
	err := ErrDatabase.WithInternal(inner)

	assert.Equal(t, inner, err.Unwrap())
	assert.True(t, errors.Is(err, inner))
	assert.Nil(t, ErrNotFound.Unwrap())
}

func TestWithMessagePreservesStatusAndCode(t *testing.T) {
	err := ErrNotFound.WithMessage("Project not found")

	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
	assert.Equal(t, "not_found", err.Code)
	assert.Equal(t, "Project not found", err.Message)

	// Original must be untouched
	assert.Equal(t, "Resource not found", ErrNotFound.Message)
}

func TestWithDetails(t *testing.T) {
	details := map[string]any{
		"allocation_percentage": []string{"must be between 0 and 100"},
	}
	err := ErrValidation.WithDetails(details)

	assert.Equal(t, details, err.Details)
	assert.Empty(t, ErrValidation.Details)
}

func TestCommonErrorStatuses(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{ErrForbidden, http.StatusForbidden, "forbidden"},
		{ErrNotFound, http.StatusNotFound, "not_found"},
		{ErrConflict, http.StatusConflict, "conflict"},
		{ErrBadRequest, http.StatusBadRequest, "bad_request"},
		{ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
		{ErrInternal, http.StatusInternalServerError, "internal_error"},
		{ErrDatabase, http.StatusInternalServerError, "database_error"},
		{ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestToHTTPError(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		status, body := ToHTTPError(ErrValidation.WithMessage("allocation_percentage out of range"))

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		errObj, ok := body["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "validation_error", errObj["code"])
		assert.Equal(t, "allocation_percentage out of range", errObj["message"])
	})

	t.Run("unknown error maps to 500", func(t *testing.T) {
		status, body := ToHTTPError(errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, status)
		errObj, ok := body["error"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "internal_error", errObj["code"])
	})
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewBadRequest("bad").HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, NewValidation("nope").HTTPStatus)

	nf := NewNotFound("project", "abc-123")
	assert.Equal(t, http.StatusNotFound, nf.HTTPStatus)
	assert.Equal(t, "project 'abc-123' not found", nf.Message)

	inner := errors.New("db down")
	internal := NewInternal("query failed", inner)
	assert.Equal(t, inner, internal.Internal)
}
