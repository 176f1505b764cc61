package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SEARCH_SOURCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "static", cfg.Search.Source)
	assert.Equal(t, 10000.0, cfg.Search.DefaultMaxPrice)
	assert.False(t, cfg.OpenAI.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_BASE", "http://localhost:9999/v1/")
	t.Setenv("SEARCH_SOURCE", "remote")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.OpenAI.Enabled)
	assert.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.APIBase)
	assert.Equal(t, "remote", cfg.Search.Source)
	assert.Equal(t, 8080, cfg.Server.Port, "invalid integers fall back to the default")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongodb")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backend")
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", Database: "jetrent", SSLMode: "disable",
	}}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=jetrent sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.Storage.PostgreSQL.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.GetPostgreSQLDSN())
}
