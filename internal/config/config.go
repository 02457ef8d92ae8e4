// Package config loads server settings from defaults, an optional config
// file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the offer engine.
type Config struct {
	Port              string        `mapstructure:"port"`
	DatabaseURL       string        `mapstructure:"database_url"`
	RedisURL          string        `mapstructure:"redis_url"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	NFTCacheSize      int           `mapstructure:"nft_cache_size"`
	AllowEmptyOffered bool          `mapstructure:"allow_empty_offered"`
	LogLevel          string        `mapstructure:"log_level"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables (PORT, DATABASE_URL, ...) apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("cache_ttl", 30*time.Second)
	v.SetDefault("nft_cache_size", 1024)
	v.SetDefault("allow_empty_offered", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 5*time.Second)
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.NFTCacheSize <= 0 {
		return fmt.Errorf("nft_cache_size must be positive, got %d", c.NFTCacheSize)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return lvl, nil
}
