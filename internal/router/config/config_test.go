package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv сбрасывает переменные, которые могли остаться в окружении; пустые значения viper игнорирует.
func clearEnv(t *testing.T) {
	t.Helper()
	for key := range defaults {
		t.Setenv(key, "")
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	dir := writeEnvFile(t, "JWT_SECRET=file-secret\nOFFER_PAGE_SIZE=10\nREQUEST_TIMEOUT=2s\nOFFER_LIST_REQUIRE_FILTER=true\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, 10, cfg.OfferPageSize)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.OfferListRequireFilter)

	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress)
	assert.Equal(t, "5432", cfg.PostgresPort)
	assert.Equal(t, "file://migrations", cfg.MigrationURL)
	assert.Equal(t, "marketplace", cfg.MongoDatabase)
	assert.Equal(t, 100, cfg.OfferMaxPageSize)
	assert.Empty(t, cfg.MongoURI)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := writeEnvFile(t, "JWT_SECRET=file-secret\nSERVER_ADDRESS=127.0.0.1:9000\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddress)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.OfferPageSize)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "missing secret", content: "SERVER_ADDRESS=0.0.0.0:8080\n", wantErr: "JWT_SECRET is required"},
		{name: "zero timeout", content: "JWT_SECRET=s\nREQUEST_TIMEOUT=0s\n", wantErr: "REQUEST_TIMEOUT must be positive"},
		{name: "max page below default", content: "JWT_SECRET=s\nOFFER_MAX_PAGE_SIZE=2\n", wantErr: "invalid page sizes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadConfig(writeEnvFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
