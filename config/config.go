// Package config loads engine settings from an optional YAML file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Konsultn-Engineering/namedb/connector"
)

// Config holds every tunable of the engine.
// Environment variables always override YAML values. The database password only comes
// from the environment.
type Config struct {
	// Template compiler
	TemplateCacheSize int    `yaml:"template_cache_size" env:"NAMEDB_TEMPLATE_CACHE_SIZE" env-default:"256"`
	ParameterPrefixes string `yaml:"parameter_prefixes" env:"NAMEDB_PARAMETER_PREFIXES" env-default:":&"`
	SpringSyntax      bool   `yaml:"spring_syntax" env:"NAMEDB_SPRING_SYNTAX" env-default:"false"`

	// Binding
	StrictParameterCount bool `yaml:"strict_parameter_count" env:"NAMEDB_STRICT_PARAMETER_COUNT" env-default:"false"`
	ReturnGeneratedKeys  bool `yaml:"return_generated_keys" env:"NAMEDB_RETURN_GENERATED_KEYS" env-default:"false"`
	PrepareStatements    bool `yaml:"prepare_statements" env:"NAMEDB_PREPARE_STATEMENTS" env-default:"false"`
	StatementCacheSize   int  `yaml:"statement_cache_size" env:"NAMEDB_STATEMENT_CACHE_SIZE" env-default:"128"`

	// MetadataCache keeps discovered procedure metadata between calls.
	MetadataCache bool `yaml:"metadata_cache" env:"NAMEDB_METADATA_CACHE" env-default:"true"`

	// LazyMaxBuffer bounds cursor look-ahead; 0 buffers everything.
	LazyMaxBuffer int `yaml:"lazy_max_buffer" env:"NAMEDB_LAZY_MAX_BUFFER" env-default:"0"`
	AsyncWorkers  int `yaml:"async_workers" env:"NAMEDB_ASYNC_WORKERS" env-default:"4"`

	LogLevel    string `yaml:"log_level" env:"NAMEDB_LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"NAMEDB_DEVELOPMENT" env-default:"false"`

	Database connector.Config `yaml:"database"`
}

// Load reads path when it exists and applies environment overrides. An empty or missing
// path reads the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			return cfg, cfg.Validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Default returns the configuration built from defaults and the environment.
func Default() *Config {
	cfg := &Config{}
	_ = cleanenv.ReadEnv(cfg)
	return cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.TemplateCacheSize <= 0:
		return fmt.Errorf("template_cache_size must be positive, got %d", c.TemplateCacheSize)
	case c.ParameterPrefixes == "":
		return errors.New("parameter_prefixes must not be empty")
	case c.StatementCacheSize <= 0:
		return fmt.Errorf("statement_cache_size must be positive, got %d", c.StatementCacheSize)
	case c.LazyMaxBuffer < 0:
		return fmt.Errorf("lazy_max_buffer must not be negative, got %d", c.LazyMaxBuffer)
	case c.AsyncWorkers <= 0:
		return fmt.Errorf("async_workers must be positive, got %d", c.AsyncWorkers)
	}
	return nil
}
