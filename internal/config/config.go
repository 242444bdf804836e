package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Identity IdentityConfig `toml:"identity"`
	Reaper   ReaperConfig   `toml:"reaper"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig contains the relational store settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains cache settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// IdentityConfig contains the identity provider endpoints and credentials
type IdentityConfig struct {
	BaseURL    string `toml:"base_url"`
	ServiceKey string `toml:"service_key"`
	JWKSURL    string `toml:"jwks_url"`
}

// ReaperConfig controls the orphan cleanup job
type ReaperConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
	BatchSize       int `toml:"batch_size"`
}

// Load reads configuration from an optional TOML file, then applies
// environment variable overrides and defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database URL is required (DATABASE_URL)")
	}
	if cfg.Identity.BaseURL == "" {
		return nil, fmt.Errorf("identity provider base URL is required (IDENTITY_URL)")
	}
	if cfg.Identity.ServiceKey == "" {
		return nil, fmt.Errorf("identity provider service key is required (IDENTITY_SERVICE_KEY)")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("IDENTITY_URL"); v != "" {
		cfg.Identity.BaseURL = v
	}
	if v := os.Getenv("IDENTITY_SERVICE_KEY"); v != "" {
		cfg.Identity.ServiceKey = v
	}
	if v := os.Getenv("IDENTITY_JWKS_URL"); v != "" {
		cfg.Identity.JWKSURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Identity.JWKSURL == "" && cfg.Identity.BaseURL != "" {
		cfg.Identity.JWKSURL = cfg.Identity.BaseURL + "/.well-known/jwks.json"
	}
	if cfg.Reaper.IntervalSeconds == 0 {
		cfg.Reaper.IntervalSeconds = 300
	}
	if cfg.Reaper.BatchSize == 0 {
		cfg.Reaper.BatchSize = 50
	}
}

// ReaperInterval returns the configured sweep interval as a duration.
func (c *Config) ReaperInterval() time.Duration {
	return time.Duration(c.Reaper.IntervalSeconds) * time.Second
}
