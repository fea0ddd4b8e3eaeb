// Package auth provides API-key authentication for the HTTP API.
//
// Authentication is a static shared key carried in the X-API-Key header.
// When no key is configured the middleware is a pass-through, which is the
// expected mode for local development and tests.
package auth

import (
	"crypto/subtle"
	"log/slog"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/orgmesh/orgkb/internal/config"
	"github.com/orgmesh/orgkb/pkg/apperror"
	"github.com/orgmesh/orgkb/pkg/logger"
)

const apiKeyHeader = "X-API-Key"

// Module provides the auth middleware to the fx app.
var Module = fx.Module("auth",
	fx.Provide(NewMiddleware),
)

// Middleware handles authentication for routes
type Middleware struct {
	cfg *config.Config
	log *slog.Logger
}

// NewMiddleware creates a new auth middleware
func NewMiddleware(cfg *config.Config, log *slog.Logger) *Middleware {
	return &Middleware{
		cfg: cfg,
		log: log.With(logger.Scope("auth")),
	}
}

// Enabled reports whether an API key is configured.
func (m *Middleware) Enabled() bool {
	return m.cfg.Auth.APIKey != ""
}

// RequireAuth returns middleware that requires a valid API key on every
// request. With no key configured all requests pass.
func (m *Middleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.Enabled() {
				return next(c)
			}

			key := c.Request().Header.Get(apiKeyHeader)
			if key == "" {
				return apperror.ErrUnauthorized.WithMessage("X-API-Key header required")
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(m.cfg.Auth.APIKey)) != 1 {
				m.log.Warn("rejected request with invalid API key",
					slog.String("path", c.Request().URL.Path),
				)
				return apperror.ErrUnauthorized.WithMessage("Invalid API key")
			}

			return next(c)
		}
	}
}
