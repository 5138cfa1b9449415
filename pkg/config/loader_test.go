package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "test-secret")

	cfg, err := NewViperLoader("", "BACKOFFICE").Load()
	require.NoError(t, err)

	assert.Equal(t, "backoffice", cfg.Service.Name)
	assert.Equal(t, "development", cfg.Service.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "backoffice", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Second, cfg.Mongo.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.CORS.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BACKOFFICE_AUTH_SECRET", "from-env")
	t.Setenv("BACKOFFICE_HTTP_PORT", "9999")
	t.Setenv("BACKOFFICE_MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("BACKOFFICE_MONGO_DATABASE", "workshop")
	t.Setenv("BACKOFFICE_LOG_LEVEL", "debug")
	t.Setenv("BACKOFFICE_RATE_LIMIT_ENABLED", "true")
	t.Setenv("BACKOFFICE_RATE_LIMIT_REQUESTS_PER_SECOND", "50")

	cfg, err := NewViperLoader("", "BACKOFFICE").Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 9999, cfg.HTTP.Port)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
	assert.Equal(t, "workshop", cfg.Mongo.Database)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
service:
  name: workshop-api
http:
  port: 3000
mongo:
  uri: mongodb://file-host:27017
  database: filedb
auth:
  secret: file-secret
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := NewViperLoader(file, "BACKOFFICE").Load()
	require.NoError(t, err)

	assert.Equal(t, "workshop-api", cfg.Service.Name)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "filedb", cfg.Mongo.Database)
	assert.Equal(t, "file-secret", cfg.Auth.Secret)
	assert.Equal(t, "json", cfg.Log.Format, "unset keys keep defaults")
}

func TestLoadEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("auth:\n  secret: file-secret\nhttp:\n  port: 3000\n"), 0o600))

	t.Setenv("BACKOFFICE_HTTP_PORT", "4000")

	cfg, err := NewViperLoader(file, "BACKOFFICE").Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.HTTP.Port)
	assert.Equal(t, "file-secret", cfg.Auth.Secret)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewViperLoader("/nonexistent/config.yaml", "BACKOFFICE").Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	loader := NewViperLoader("", "BACKOFFICE")

	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Auth.Secret = "s"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.Service.Name = "" },
			wantErr: "service.name",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "http.port",
		},
		{
			name:    "missing mongo uri",
			mutate:  func(c *Config) { c.Mongo.URI = "" },
			wantErr: "mongo.uri",
		},
		{
			name:    "missing auth secret",
			mutate:  func(c *Config) { c.Auth.Secret = "" },
			wantErr: "auth.secret",
		},
		{
			name: "rate limit enabled without rate",
			mutate: func(c *Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.RequestsPerSecond = 0
			},
			wantErr: "requests_per_second",
		},
		{
			name: "cors enabled without origins",
			mutate: func(c *Config) {
				c.CORS.Enabled = true
				c.CORS.AllowOrigins = nil
			},
			wantErr: "allow_origins",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := loader.Validate(cfg)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	loader := NewViperLoader("", "BACKOFFICE")
	cfg := DefaultConfig()
	cfg.Service.Name = ""
	cfg.Mongo.Database = ""

	err := loader.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service.name")
	assert.Contains(t, err.Error(), "mongo.database")
}
