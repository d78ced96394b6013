package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains the shared cache tier's connection settings.
// When Addr is empty the service runs with the local cache tier only.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CacheConfig tunes the two cache tiers.
type CacheConfig struct {
	// LocalCapacity bounds the number of entries in the local tier.
	LocalCapacity int `mapstructure:"local_capacity" validate:"required,gt=0"`
	// LocalTTL is the advisory expiry window for local entries. It is
	// independent of RemoteTTL and normally much shorter.
	LocalTTL time.Duration `mapstructure:"local_ttl" validate:"required,gt=0"`
	// RemoteTTL is the explicit TTL for shared-tier entries.
	RemoteTTL time.Duration `mapstructure:"remote_ttl" validate:"required,gt=0"`
	// RemoteTimeout bounds each shared-tier call.
	RemoteTimeout time.Duration `mapstructure:"remote_timeout" validate:"required,gt=0"`
}

// SchedulerConfig overrides spaced-repetition algorithm parameters.
// Zero values keep the algorithm defaults.
type SchedulerConfig struct {
	MinEaseFactor       float64 `mapstructure:"min_ease_factor" validate:"gte=0"`
	MaxEaseFactor       float64 `mapstructure:"max_ease_factor" validate:"gte=0"`
	EaseBonus           float64 `mapstructure:"ease_bonus" validate:"gte=0"`
	EasePenalty         float64 `mapstructure:"ease_penalty" validate:"gte=0"`
	RelearnIntervalDays int     `mapstructure:"relearn_interval_days" validate:"gte=0"`
	MaxIntervalDays     int     `mapstructure:"max_interval_days" validate:"gte=0"`
}
