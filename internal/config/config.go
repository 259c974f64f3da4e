package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/installdeck/installdeck/internal/catalog"
)

// Config holds all configuration for the server
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// CatalogConfig holds catalog storage configuration (URI-based)
type CatalogConfig struct {
	URI   string `mapstructure:"uri"`   // Catalog URI (e.g., file://./data/catalog.json)
	Token string `mapstructure:"token"` // Opaque token for backend authentication
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Type      string `mapstructure:"type"`       // none | basic
	UsersFile string `mapstructure:"users_file"` // for basic auth
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | text
}

// applyDefaults sets default values and binds INSTALLDECK_* environment
// variables on a viper instance.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("catalog.uri", "file://./data/catalog.json")
	v.SetDefault("catalog.token", "")
	v.SetDefault("auth.type", "none")
	v.SetDefault("auth.users_file", "./users.yaml")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetEnvPrefix("INSTALLDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewViper creates a new viper instance with defaults and environment
// binding. CLI flags are bound on top of this in the CLI layer.
func NewViper() *viper.Viper {
	v := viper.New()
	applyDefaults(v)
	return v
}

// Load loads configuration from environment variables and defaults
func Load() (*Config, error) {
	return LoadWithViper(NewViper())
}

// LoadWithViper loads configuration using a pre-configured viper instance.
// This allows CLI flags to be bound before loading.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if _, err := catalog.ParseURI(c.Catalog.URI); err != nil {
		return fmt.Errorf("invalid catalog URI: %w", err)
	}

	if c.Auth.Type != "none" && c.Auth.Type != "basic" {
		return fmt.Errorf("auth.type must be 'none' or 'basic'")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text")
	}

	return nil
}

// ParsedCatalogURI returns the parsed catalog URI
func (c *Config) ParsedCatalogURI() (*catalog.URI, error) {
	return catalog.ParseURI(c.Catalog.URI)
}

// MaskToken returns a masked version of the catalog token for logging
func (c *Config) MaskToken() string {
	if c.Catalog.Token == "" {
		return ""
	}
	return "***"
}
