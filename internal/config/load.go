package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables read by Load.
const EnvPrefix = "PRESS"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches for
// config.yaml in the working directory; a missing search result is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.base_url", "http://localhost:8080/wp-json")
	v.SetDefault("server.mount_path", "/wp-json")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("database.driver", "memory")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.cookie_name", "press_auth")
	v.SetDefault("cache.ttl_seconds", 300)
}

// bindEnvs makes every key visible to Unmarshal even when it only exists in the
// environment; AutomaticEnv alone only answers explicit Get calls.
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level", "server.base_url", "server.mount_path",
		"server.max_body_bytes", "server.read_timeout_seconds", "server.write_timeout_seconds",
		"database.driver", "database.url",
		"auth.jwt_secret", "auth.token_lifetime_minutes", "auth.cookie_name",
		"cache.redis_addr", "cache.redis_db", "cache.ttl_seconds",
		"content.registry_file", "content.seed_demo_content", "content.demo_admin_password",
	}
	for _, key := range keys {
		// BindEnv only fails when called without a key.
		_ = v.BindEnv(key)
	}
}
