package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the client's configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig points the client at the AccuNode platform API.
type APIConfig struct {
	// BaseURL is the backend base URL (ACCUNODE_API_URL). Required.
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // in seconds
}

// SessionConfig selects where the auth session is persisted.
type SessionConfig struct {
	// Backend is "file" or "redis".
	Backend string `mapstructure:"backend"`
	// Path is the session file location for the file backend.
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig configures the syncd HTTP surface.
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// HTTPTimeout returns the API timeout as a duration.
func (c *APIConfig) HTTPTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (set ACCUNODE_API_URL)")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	switch c.Session.Backend {
	case "", "file", "redis":
	default:
		return fmt.Errorf("session.backend must be \"file\" or \"redis\", got %q", c.Session.Backend)
	}
	if c.Session.Backend == "redis" && c.Session.Redis.Addr == "" {
		return fmt.Errorf("session.redis.addr is required for the redis session backend")
	}
	return nil
}
