package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgmesh/orgkb/internal/config"
	"github.com/orgmesh/orgkb/pkg/apperror"
)

func newMiddleware(apiKey string) *Middleware {
	cfg := &config.Config{}
	cfg.Auth.APIKey = apiKey
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewMiddleware(cfg, log)
}

func callProtected(t *testing.T, m *Middleware, headers map[string]string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := m.RequireAuth()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return handler(c)
}

func TestRequireAuthDisabledWithoutKey(t *testing.T) {
	m := newMiddleware("")

	err := callProtected(t, m, nil)

	assert.NoError(t, err)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	m := newMiddleware("secret-key")

	err := callProtected(t, m, nil)

	require.Error(t, err)
	appErr, ok := err.(*apperror.Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
}

func TestRequireAuthWrongKey(t *testing.T) {
	m := newMiddleware("secret-key")

	err := callProtected(t, m, map[string]string{"X-API-Key": "wrong"})

	require.Error(t, err)
	appErr, ok := err.(*apperror.Error)
	require.True(t, ok)
	assert.Equal(t, "unauthorized", appErr.Code)
}

func TestRequireAuthValidKey(t *testing.T) {
	m := newMiddleware("secret-key")

	err := callProtected(t, m, map[string]string{"X-API-Key": "secret-key"})

	assert.NoError(t, err)
}
