package mxcache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds configuration for MX lookups and their cache.
type Config struct {
	// Type selects the cache backend: "memory" (default), "redis" or "none".
	Type          string        `mapstructure:"type"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

const defaultTTL = time.Hour

// NewResolver builds the resolver used for DNS validation: a DNSResolver
// with the given lookup timeout, wrapped in the configured cache.
func NewResolver(cfg Config, timeout time.Duration, log zerolog.Logger) (Resolver, error) {
	dns := NewDNSResolver(timeout)

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	switch cfg.Type {
	case "memory", "":
		return NewCachingResolver(dns, NewMemoryStore(), ttl, log), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return NewCachingResolver(dns, NewRedisStore(client), ttl, log), nil

	case "none":
		return dns, nil

	default:
		return nil, fmt.Errorf("unknown mx cache type: %s", cfg.Type)
	}
}
