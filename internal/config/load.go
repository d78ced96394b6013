package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from
// environment variables. Environment variables take precedence over values
// from config files and use the RECALL_ prefix with underscores for
// nesting (e.g. RECALL_SERVER_PORT, RECALL_DATABASE_URL).
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables and defaults apply.
	}

	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	// Empty defaults register the keys so AutomaticEnv can bind them.
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "recall:")

	v.SetDefault("cache.local_capacity", 1000)
	v.SetDefault("cache.local_ttl", time.Minute)
	v.SetDefault("cache.remote_ttl", time.Hour)
	v.SetDefault("cache.remote_timeout", 250*time.Millisecond)

	// Zero means "keep the algorithm default".
	v.SetDefault("scheduler.min_ease_factor", 0.0)
	v.SetDefault("scheduler.max_ease_factor", 0.0)
	v.SetDefault("scheduler.ease_bonus", 0.0)
	v.SetDefault("scheduler.ease_penalty", 0.0)
	v.SetDefault("scheduler.relearn_interval_days", 0)
	v.SetDefault("scheduler.max_interval_days", 0)
}
