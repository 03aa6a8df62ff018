package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/equipment-reservations/internal/config"
)

func setRequiredEnv(t *testing.T) {
	for _, key := range []string{
		"APP_PORT", "DB_PORT", "DB_SSLMODE", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_MAX_CONN_LIFETIME",
		"ALLOW_PAST_DATES", "MAX_SAVE_ATTEMPTS", "SEED_DEMO_DATA", "LOG_PRETTY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_NAME", "reservations")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Postgres.MaxConnLifetime)
	assert.Equal(t, 3, cfg.Reservations.MaxSaveAttempts)
	assert.False(t, cfg.Reservations.AllowPastDates)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("ALLOW_PAST_DATES", "true")
	t.Setenv("MAX_SAVE_ATTEMPTS", "5")
	t.Setenv("DB_MAX_CONN_LIFETIME", "1h")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Reservations.AllowPastDates)
	assert.Equal(t, 5, cfg.Reservations.MaxSaveAttempts)
	assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  port: "7070"
postgres:
  host: db.internal
  user: svc
  dbname: lab
  max_conns: 4
  min_conns: 1
reservations:
  allow_past_dates: true
seed_demo_data: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("DB_NAME", "lab_override")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "lab_override", cfg.Postgres.DBName)
	assert.Equal(t, int32(4), cfg.Postgres.MaxConns)
	assert.True(t, cfg.Reservations.AllowPastDates)
	assert.True(t, cfg.SeedDemoData)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST is required")
	assert.Contains(t, err.Error(), "DB_NAME is required")
}

func TestLoad_InvalidValue(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ALLOW_PAST_DATES", "sometimes")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ALLOW_PAST_DATES")
}
