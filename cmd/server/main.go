// Package main provides the entry point for the orgkb API server
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/orgmesh/orgkb/domain/entities"
	"github.com/orgmesh/orgkb/domain/health"
	"github.com/orgmesh/orgkb/domain/projectrel"
	"github.com/orgmesh/orgkb/domain/relationships"
	"github.com/orgmesh/orgkb/domain/tracing"
	"github.com/orgmesh/orgkb/internal/config"
	"github.com/orgmesh/orgkb/internal/database"
	"github.com/orgmesh/orgkb/internal/server"
	"github.com/orgmesh/orgkb/pkg/auth"
	"github.com/orgmesh/orgkb/pkg/logger"
	"github.com/orgmesh/orgkb/pkg/metrics"
)

func main() {
	// Load .env files if present (for local development)
	// Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		server.Module,

		// Auth module
		auth.Module,

		// Observability
		tracing.Module,
		metrics.Module,

		// Domain modules
		health.Module,
		entities.Module,
		relationships.Module,
		projectrel.Module,
	).Run()
}
