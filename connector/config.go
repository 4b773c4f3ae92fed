package connector

import (
	"fmt"
	"time"
)

// Config represents database connection configuration.
type Config struct {
	// Driver selects the provider: pgx, postgres, mysql, tidb, sqlserver or sqlite3.
	Driver         string            `json:"driver" yaml:"driver" env:"NAMEDB_DB_DRIVER" env-default:"pgx"`
	Host           string            `json:"host" yaml:"host" env:"NAMEDB_DB_HOST" env-default:"localhost"`
	Port           int               `json:"port" yaml:"port" env:"NAMEDB_DB_PORT"`
	Database       string            `json:"database" yaml:"database" env:"NAMEDB_DB_NAME"`
	Username       string            `json:"username" yaml:"username" env:"NAMEDB_DB_USER"`
	Password       string            `json:"-" yaml:"-" env:"NAMEDB_DB_PASSWORD"` // secret, env only
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode" env:"NAMEDB_DB_SSLMODE"`
	Params         map[string]string `json:"params" yaml:"params" env:"NAMEDB_DB_PARAMS"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout" env:"NAMEDB_DB_CONNECT_TIMEOUT" env-default:"10s"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// PoolConfig defines connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `json:"max_open" yaml:"max_open" env:"NAMEDB_DB_MAX_OPEN" env-default:"10"`
	MaxIdle     int           `json:"max_idle" yaml:"max_idle" env:"NAMEDB_DB_MAX_IDLE" env-default:"5"`
	MaxLifetime time.Duration `json:"max_lifetime" yaml:"max_lifetime" env:"NAMEDB_DB_MAX_LIFETIME" env-default:"1h"`
	MaxIdleTime time.Duration `json:"max_idle_time" yaml:"max_idle_time" env:"NAMEDB_DB_MAX_IDLE_TIME" env-default:"30m"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

// Validate checks the settings every provider needs.
func (c Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("driver is required")
	}
	if c.Driver == "sqlite3" {
		if c.Database == "" {
			return fmt.Errorf("database path is required for sqlite3")
		}
		return nil
	}
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
