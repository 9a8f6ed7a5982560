// Package config loads server configuration with viper.
//
// Precedence (lowest to highest): defaults < config file < environment.
// Environment variables use the STRINGS_ prefix with dots replaced by
// underscores (STRINGS_SERVER_PORT), and the unprefixed PORT, HOST,
// STORE_BACKEND and ALLOWED_ORIGINS are honoured as well.
package config

import (
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stevemurr/string-analysis-server/errors"
	"github.com/stevemurr/string-analysis-server/logger"
	"github.com/stevemurr/string-analysis-server/store"
)

// DefaultPort is the listening port when nothing overrides it.
const DefaultPort = 3000

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("store.backend", "memory")

	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")
}

// BindEnv wires the prefixed and the legacy unprefixed environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("STRINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// BindEnv takes the first set variable in order.
	_ = v.BindEnv("server.port", "STRINGS_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.host", "STRINGS_SERVER_HOST", "HOST")
	_ = v.BindEnv("store.backend", "STRINGS_STORE_BACKEND", "STORE_BACKEND")
	_ = v.BindEnv("server.allowed_origins", "STRINGS_SERVER_ALLOWED_ORIGINS", "ALLOWED_ORIGINS")
}

// New returns a viper instance with defaults and environment bindings, and
// with configFile merged in when it is not empty.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	if err := Prepare(v, configFile); err != nil {
		return nil, err
	}
	return v, nil
}

// Prepare applies defaults, environment bindings and configFile to an
// existing viper instance, typically one that already has flags bound.
func Prepare(v *viper.Viper, configFile string) error {
	SetDefaults(v)
	BindEnv(v)
	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", configFile)
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.Newf("server.shutdown_timeout %s is negative", c.Server.ShutdownTimeout)
	}
	if !slices.Contains(store.Backends, c.Store.Backend) {
		return errors.WithHintf(
			errors.Newf("unknown store.backend %q", c.Store.Backend),
			"supported backends: %s", strings.Join(store.Backends, ", "))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// splitOrigins accepts both list values and a single comma-separated string,
// which is what environment variables produce.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
