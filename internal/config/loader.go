package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/accunode/accunode-go/pkg/errors"
	"github.com/spf13/viper"
)

// LoadConfig loads the configuration from file and environment variables.
// Environment variables use the ACCUNODE_ prefix with dots replaced by
// underscores, so api.base_url becomes ACCUNODE_API_BASE_URL. ACCUNODE_API_URL
// is honored as a shorthand for the base URL.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("api.timeout", 30)
	v.SetDefault("session.backend", "file")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/accunode/")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".accunode"))
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("ACCUNODE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ACCUNODE_API_URL is the documented variable; map it onto api.base_url.
	if apiURL := os.Getenv("ACCUNODE_API_URL"); apiURL != "" {
		v.Set("api.base_url", apiURL)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewValidationError("config", "failed to unmarshal config").WithCause(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "auth-storage.json"
	}
	return filepath.Join(home, ".accunode", "auth-storage.json")
}
