// Package config provides configuration loading for the QC Ordinance Tracker.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the default config file name, looked up in the working
// directory when no explicit path is given.
const ConfigFile = "ordinansa.yaml"

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`
	// ReadTimeout is the maximum duration for reading a request.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out a response write.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	URL string `yaml:"url"`
	// MigrationsPath points at the migration files directory.
	MigrationsPath string `yaml:"migrations_path"`
}

// SessionConfig configures server-side session storage.
type SessionConfig struct {
	// Expiration is the session lifetime.
	Expiration time.Duration `yaml:"expiration"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL:            "",
			MigrationsPath: "migrations",
		},
		Session: SessionConfig{
			Expiration: 8 * time.Hour,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (set it in %s or via DATABASE_URL)", ConfigFile)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load builds the effective configuration: defaults, then the YAML file if
// present, then environment variable overrides. DATABASE_URL and PORT always
// win over the file so containerized deployments need no config file at all.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		path = ConfigFile
	}
	if fileConfig, err := LoadFromFile(path); err == nil {
		config = fileConfig
	} else if !os.IsNotExist(err) {
		// A present-but-broken file is an error; a missing one is not.
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, err
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}
