package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("STRINGS_SERVER_PORT", "9000")
	t.Setenv("STRINGS_LOG_LEVEL", "debug")
	t.Setenv("STRINGS_SERVER_SHUTDOWN_TIMEOUT", "2s")

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4000
store:
  backend: sqlite
log:
  json: true
`), 0o644))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.True(t, cfg.Log.JSON)
}

func TestNew_MissingConfigFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server: ServerConfig{Port: 3000, ShutdownTimeout: time.Second},
			Store:  StoreConfig{Backend: "memory"},
			Log:    LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"port zero picks any port", func(c *Config) { c.Server.Port = 0 }, false},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, true},
		{"unknown backend", func(c *Config) { c.Store.Backend = "json" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
