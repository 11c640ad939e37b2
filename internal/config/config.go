package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/GeekyBear/inventory-api/pkg/config"
)

// Config holds all configuration for the inventory service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// MongoDB
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"inventory"`

	// Redis (facets cache)
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	FacetsTTL     time.Duration `env:"FACETS_CACHE_TTL" envDefault:"60s"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Pagination policy
	MaxPageSize int `env:"MAX_PAGE_SIZE" envDefault:"100"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load inventory config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("invalid max page size: %d", c.MaxPageSize)
	}
	if c.FacetsTTL <= 0 {
		return fmt.Errorf("invalid facets cache TTL: %s", c.FacetsTTL)
	}
	return nil
}
