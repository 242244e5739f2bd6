package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/redis/go-redis/v9"
)

// DefaultEventStream is the Redis stream domain events are appended to.
const DefaultEventStream = "volunteer:events"

// RedisConfig configures the optional Redis stream writer. An empty Addr
// disables it.
type RedisConfig struct {
	Addr         string `env:"REDIS_ADDR"`
	Password     string `env:"REDIS_PASSWORD"`
	DB           int    `env:"REDIS_DB" envDefault:"0"`
	EnableTLS    bool   `env:"REDIS_TLS" envDefault:"false"`
	PoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	Stream       string `env:"REDIS_STREAM" envDefault:"volunteer:events"`
	StreamMaxLen int64  `env:"REDIS_STREAM_MAX_LEN" envDefault:"10000"`
}

// LoadRedisConfig loads the Redis settings from the environment.
func LoadRedisConfig() (*RedisConfig, error) {
	cfg := &RedisConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load redis configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// Validate checks the parsed values and fills empty optional ones.
func (c *RedisConfig) Validate() error {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.DB < 0 {
		return errors.New("redis_db cannot be negative")
	}
	if c.StreamMaxLen < 0 {
		return errors.New("redis_stream_max_len cannot be negative")
	}
	if strings.TrimSpace(c.Stream) == "" {
		c.Stream = DefaultEventStream
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	return nil
}

// NewRedisClient creates a Redis client from the configuration.
func NewRedisClient(cfg *RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		MaxRetries: cfg.MaxRetries,
		PoolSize:   cfg.PoolSize,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,

		ConnMaxIdleTime: 30 * time.Minute,
		ConnMaxLifetime: time.Hour,
	}

	if cfg.EnableTLS {
		host := cfg.Addr
		if i := strings.LastIndex(host, ":"); i > 0 {
			host = host[:i]
		}
		options.TLSConfig = &tls.Config{ServerName: host}
	}

	return redis.NewClient(options)
}
