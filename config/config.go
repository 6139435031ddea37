// Package config loads the server configuration from defaults, an optional
// config file, a .env file, FAKE_SERVER_* environment variables and command
// line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stevemurr/fake-server/store"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FAKE_SERVER"

// Config holds all configuration for the server.
type Config struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DataDir         string        `mapstructure:"data-dir"`
	Backend         string        `mapstructure:"backend"`
	LogLevel        string        `mapstructure:"log-level"`
	LogFormat       string        `mapstructure:"log-format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BaseURL returns the URL clients use to reach the server.
func (c *Config) BaseURL() string {
	return "http://" + c.Addr()
}

// RegisterFlags adds the configuration flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Config file (yaml, json or toml)")
	fs.String("host", "localhost", "Host to listen on")
	fs.Int("port", 3001, "Port to listen on")
	fs.String("data-dir", "./fake-server", "Directory holding one <resource>.json file per resource")
	fs.String("backend", "json", "Persistence backend (json, sqlite, memory)")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("log-format", "text", "Log format (text, json)")
	fs.Duration("shutdown-timeout", 5*time.Second, "Grace period for in-flight requests on shutdown")
}

// Load resolves the configuration. fs must have been set up with
// RegisterFlags; flags the user set win over every other source.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if !slices.Contains(store.Backends, c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend %q (supported: %s)", c.Backend, strings.Join(store.Backends, ", ")))
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("shutdown timeout must not be negative"))
	}
	return errors.Join(errs...)
}
