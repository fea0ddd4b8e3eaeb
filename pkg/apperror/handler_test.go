package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (echo.HTTPErrorHandler, *echo.Echo) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := echo.New()
	return HTTPErrorHandler(log), e
}

func invoke(t *testing.T, handler echo.HTTPErrorHandler, e *echo.Echo, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler(err, c)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "response must contain an error object")
	return errObj
}

func TestHTTPErrorHandlerAppError(t *testing.T) {
	handler, e := newTestHandler()

	rec := invoke(t, handler, e, http.MethodGet, ErrNotFound.WithMessage("Project not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	errObj := decodeError(t, rec)
	assert.Equal(t, "not_found", errObj["code"])
	assert.Equal(t, "Project not found", errObj["message"])
}

func TestHTTPErrorHandlerAppErrorDetails(t *testing.T) {
	handler, e := newTestHandler()

	err := ErrValidation.WithDetails(map[string]any{
		"allocation_percentage": "must be between 0 and 100",
	})
	rec := invoke(t, handler, e, http.MethodGet, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errObj := decodeError(t, rec)
	assert.Equal(t, "validation_error", errObj["code"])
	details, ok := errObj["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "must be between 0 and 100", details["allocation_percentage"])
}

func TestHTTPErrorHandlerEchoError(t *testing.T) {
	tests := []struct {
		name     string
		err      *echo.HTTPError
		status   int
		wantCode string
	}{
		{
			name:     "not found",
			err:      echo.NewHTTPError(http.StatusNotFound, "route not found"),
			status:   http.StatusNotFound,
			wantCode: "not_found",
		},
		{
			name:     "bad request",
			err:      echo.NewHTTPError(http.StatusBadRequest, "malformed body"),
			status:   http.StatusBadRequest,
			wantCode: "bad_request",
		},
		{
			name:     "unauthorized",
			err:      echo.NewHTTPError(http.StatusUnauthorized, "missing key"),
			status:   http.StatusUnauthorized,
			wantCode: "unauthorized",
		},
		{
			name:     "service unavailable",
			err:      echo.NewHTTPError(http.StatusServiceUnavailable, "store down"),
			status:   http.StatusServiceUnavailable,
			wantCode: "store_unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, e := newTestHandler()
			rec := invoke(t, handler, e, http.MethodGet, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			errObj := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, errObj["code"])
		})
	}
}

func TestHTTPErrorHandlerUnknownError(t *testing.T) {
	handler, e := newTestHandler()

	rec := invoke(t, handler, e, http.MethodGet, errors.New("something broke"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj := decodeError(t, rec)
	assert.Equal(t, "internal_error", errObj["code"])
	// Internal detail must not leak to clients
	assert.Equal(t, "An internal error occurred", errObj["message"])
}

func TestHTTPErrorHandlerHeadRequest(t *testing.T) {
	handler, e := newTestHandler()

	rec := invoke(t, handler, e, http.MethodHead, ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
