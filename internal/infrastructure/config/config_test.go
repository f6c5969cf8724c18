package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "taskfabric", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "TASKFABRIC_EVENTS", cfg.NATS.Stream)
	assert.Equal(t, 5*time.Second, cfg.Services.LookupTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenExpiration)
	assert.False(t, cfg.Event.OutboxEnabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TASKFABRIC_APP_PORT", "9999")
	t.Setenv("TASKFABRIC_DATABASE_HOST", "db.internal")
	t.Setenv("TASKFABRIC_EVENT_OUTBOX_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Event.OutboxEnabled)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("TASKFABRIC_APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "taskfabric",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.NotContains(t, dsn, "p@ss/word", "password must be URL-escaped")
}

func TestDatabaseConfig_DSN_Sqlite(t *testing.T) {
	cfg := DatabaseConfig{Driver: "sqlite", DBName: "test.db"}
	assert.Equal(t, "test.db", cfg.DSN())

	empty := DatabaseConfig{Driver: "sqlite"}
	assert.Equal(t, "file::memory:?cache=shared", empty.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
