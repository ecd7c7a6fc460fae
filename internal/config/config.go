// Package config loads runtime configuration for the payee manager.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file, then process environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Manager  ManagerConfig  `yaml:"manager"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr" env:"PAYEES_ADDR"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"PAYEES_READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"PAYEES_WRITE_TIMEOUT"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"PAYEES_ALLOWED_ORIGINS"`
	AuthTokens     []string      `yaml:"auth_tokens" env:"PAYEES_AUTH_TOKENS"`
	RateLimitRPS   int           `yaml:"rate_limit_rps" env:"PAYEES_RATE_LIMIT_RPS"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env:"PAYEES_RATE_LIMIT_BURST"`
	AuditLogPath   string        `yaml:"audit_log_path" env:"PAYEES_AUDIT_LOG"`
}

type DatabaseConfig struct {
	// Driver is "memory" or "postgres".
	Driver         string `yaml:"driver" env:"PAYEES_DB_DRIVER"`
	DSN            string `yaml:"dsn" env:"DATABASE_URL"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"PAYEES_DB_MIGRATE"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL"`
}

// UpstreamConfig points the manager at a remote payee API. When BaseURL is
// empty the manager reads from the in-process payee service.
type UpstreamConfig struct {
	BaseURL    string        `yaml:"base_url" env:"PAYEES_UPSTREAM_URL"`
	Token      string        `yaml:"token" env:"PAYEES_UPSTREAM_TOKEN"`
	Timeout    time.Duration `yaml:"timeout" env:"PAYEES_UPSTREAM_TIMEOUT"`
	MaxRetries int           `yaml:"max_retries" env:"PAYEES_UPSTREAM_RETRIES"`
}

type ManagerConfig struct {
	SessionTTL      time.Duration `yaml:"session_ttl" env:"PAYEES_SESSION_TTL"`
	JanitorSchedule string        `yaml:"janitor_schedule" env:"PAYEES_JANITOR_SCHEDULE"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			AllowedOrigins: []string{"*"},
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Database: DatabaseConfig{Driver: "memory"},
		Redis:    RedisConfig{TTL: 30 * time.Second},
		Upstream: UpstreamConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		},
		Manager: ManagerConfig{
			SessionTTL:      30 * time.Minute,
			JanitorSchedule: "@every 1m",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load reads config/payees.yaml when present and applies environment
// overrides.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "payees.yaml"))
}

// LoadFromPath reads the YAML file at path (missing files are ignored), then
// .env and the process environment.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "", "memory":
		c.Database.Driver = "memory"
	case "postgres":
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Manager.SessionTTL <= 0 {
		return fmt.Errorf("manager.session_ttl must be positive")
	}
	if c.Upstream.MaxRetries < 0 {
		return fmt.Errorf("upstream.max_retries cannot be negative")
	}
	c.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upstream.BaseURL), "/")
	return nil
}
