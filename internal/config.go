package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverRedis    = "redis"

	IntegrityModeBlock = "block"
	IntegrityModeWarn  = "warn"
)

type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Integrity     IntegrityConfig     `mapstructure:"integrity"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int             `mapstructure:"port"`
	BaseURL           string          `mapstructure:"base_url"`
	AllowedOrigins    string          `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration   `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration   `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration   `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration   `mapstructure:"write_timeout"`
	SecureHeaders     bool            `mapstructure:"secure_headers"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// StorageConfig selects the key/value backend holding the three collections.
// Source is a DSN for sqlite/postgres and a host:port for redis.
type StorageConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	QuotaBytes      int64         `mapstructure:"quota_bytes"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	OpTimeout       time.Duration `mapstructure:"op_timeout"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type IntegrityConfig struct {
	Mode string `mapstructure:"mode"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Integrity.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("integrity config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("rate_limit requires positive requests and window")
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageDriverSQLite, StorageDriverPostgres, StorageDriverRedis:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.QuotaBytes < 0 {
		return errors.New("quota_bytes cannot be negative")
	}
	if c.MaxIdleConns > c.MaxOpenConns && c.MaxOpenConns > 0 {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *StorageConfig) IsSQL() bool {
	return c.Driver == StorageDriverSQLite || c.Driver == StorageDriverPostgres
}

func (c *IntegrityConfig) Validate() error {
	if c.Mode != IntegrityModeBlock && c.Mode != IntegrityModeWarn {
		return fmt.Errorf("mode must be %q or %q", IntegrityModeBlock, IntegrityModeWarn)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
