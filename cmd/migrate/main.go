// Command migrate applies database migrations outside the server process.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/orgmesh/orgkb/internal/migrate"
)

func main() {
	_ = godotenv.Load(".env")

	command := flag.String("cmd", "up", "Migration command: up, down, status, version")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dbHost := getEnv("POSTGRES_HOST", "localhost")
		dbPort := getEnv("POSTGRES_PORT", "5432")
		dbUser := getEnv("POSTGRES_USER", "orgkb")
		dbPass := os.Getenv("POSTGRES_PASSWORD")
		dbName := getEnv("POSTGRES_DB", "orgkb")
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	migrator := migrate.NewMigrator(db, log)

	ctx := context.Background()
	var err error
	switch *command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		err = migrator.Status(ctx)
	case "version":
		var v int64
		if v, err = migrator.Version(ctx); err == nil {
			fmt.Printf("database version: %d\n", v)
		}
	default:
		fmt.Printf("unknown command %q (expected up, down, status, version)\n", *command)
		os.Exit(1)
	}

	if err != nil {
		log.Error("migration failed", slog.String("cmd", *command), slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
