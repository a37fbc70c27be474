package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("PORT", "")
	t.Setenv("DYNAMO_TABLE", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("METRICS_ENABLED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMySQL, cfg.StoreDriver)
	assert.Equal(t, "Users", cfg.DynamoTable)
	assert.Equal(t, "*", cfg.AllowedOrigins)
	assert.True(t, cfg.MetricsEnabled)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
port: "9000"
store_driver: redis
redis_addr: ${TEST_REDIS_HOST}:6380
timezone: Europe/Istanbul
rate_limit: 30
metrics_enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("TEST_REDIS_HOST", "cache")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env wins over yaml")
	assert.Equal(t, StoreRedis, cfg.StoreDriver)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, "Europe/Istanbul", cfg.Timezone)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"dynamodb driver", func(c *Config) { c.StoreDriver = StoreDynamoDB }, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"bad timeout", func(c *Config) { c.HTTPTimeout = "soon" }, true},
		{"bad session ttl", func(c *Config) { c.SessionTTL = "forever" }, true},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := defaults()
	assert.Equal(t, "macros:macros_pass@tcp(localhost:3306)/macros?parseTime=true&charset=utf8mb4", cfg.DSN())
}

func TestGetEnvInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	assert.Equal(t, 3, getEnvInt("REDIS_DB", 3))
}
