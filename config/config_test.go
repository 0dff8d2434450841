package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ITEMS_PER_PAGE", "50")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file::memory:", c.DatabaseURL)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, 50, c.ItemsPerPage)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)
	assert.True(t, c.IsTest())
	assert.Same(t, c, GetConfig())
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "printshop.yaml")
	content := "database_url: postgres://yaml/db\nport: \"7000\"\nlog_level: debug\nitems_per_page: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "7100")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://yaml/db", c.DatabaseURL, "YAML value used when env is empty")
	assert.Equal(t, "7100", c.Port, "environment overrides YAML")
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 10, c.ItemsPerPage)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unsupported driver",
			mutate:  func(c *Config) { c.DBDriver = "oracle" },
			wantErr: "unsupported DB_DRIVER",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.StorageBackend = "s3" },
			wantErr: "AWS_S3_BUCKET is required",
		},
		{
			name: "short secret in production",
			mutate: func(c *Config) {
				c.GoEnv = "production"
				c.SessionSecret = "short"
			},
			wantErr: "SESSION_SECRET",
		},
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			c.DatabaseURL = "postgres://localhost/printshop"
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetConfigDefaults(t *testing.T) {
	original := cfg
	defer func() { cfg = original }()

	cfg = nil
	c := GetConfig()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, int64(16<<20), c.MaxUploadBytes)
	assert.Equal(t, "printshop_session", c.SessionCookie)
}
