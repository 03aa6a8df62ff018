// Package dbtest connects repository tests to a live Postgres.
//
// Tests are skipped unless DB_HOST_TEST is set; the remaining DB_*_TEST
// variables default to a local development database.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/config"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func migrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "migrations"
	}
	// internal/db/dbtest -> repository root
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations")
}

// Connect opens the test database and applies migrations. It returns nil when
// DB_HOST_TEST is not set.
func Connect() *db.Postgres {
	host := os.Getenv("DB_HOST_TEST")
	if host == "" {
		log.Info().Msg("TEST SETUP: DB_HOST_TEST not set, repository tests will be skipped")
		return nil
	}

	cfg := config.PostgresConfig{
		Host:            host,
		Port:            env("DB_PORT_TEST", "5432"),
		User:            env("DB_USER_TEST", "postgres"),
		Password:        env("DB_PASSWORD_TEST", "123456"),
		DBName:          env("DB_NAME_TEST", "reservations_test"),
		SSLMode:         env("DB_SSLMODE_TEST", "disable"),
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MigrationsPath:  migrationsPath(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("db_host", cfg.Host).Str("db_port", cfg.Port).Msg("Failed to connect to test database")
	}
	if err := pg.Migrate(cfg); err != nil {
		pg.Close()
		log.Fatal().Err(err).Msg("Failed to migrate test database")
	}

	return pg
}

// Require skips t when no test database is configured.
func Require(t testing.TB, pg *db.Postgres) {
	t.Helper()
	if pg == nil {
		t.Skip("DB_HOST_TEST not set")
	}
}

// Truncate empties every table and resets identities.
func Truncate(t testing.TB, pg *db.Postgres) {
	t.Helper()
	_, err := pg.Pool.Exec(context.Background(), "TRUNCATE TABLE reservations, equipment, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}
