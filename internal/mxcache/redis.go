package mxcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "quick-mail:mx:"

// RedisStore shares MX answers between processes through Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Name() string { return "redis" }

type redisMX struct {
	Host string `json:"host"`
	Pref uint16 `json:"pref"`
}

// Get reads and decodes the cached answer for domain.
func (s *RedisStore) Get(ctx context.Context, domain string) ([]*net.MX, bool, error) {
	data, err := s.client.Get(ctx, redisKey(domain)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", redisKey(domain), err)
	}

	var stored []redisMX
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, false, fmt.Errorf("unmarshal mx records: %w", err)
	}

	records := make([]*net.MX, 0, len(stored))
	for _, mx := range stored {
		records = append(records, &net.MX{Host: mx.Host, Pref: mx.Pref})
	}
	return records, true, nil
}

// Set stores records for domain with a Redis expiry of ttl.
func (s *RedisStore) Set(ctx context.Context, domain string, records []*net.MX, ttl time.Duration) error {
	stored := make([]redisMX, 0, len(records))
	for _, mx := range records {
		stored = append(stored, redisMX{Host: mx.Host, Pref: mx.Pref})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal mx records: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(domain), data, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", redisKey(domain), err)
	}
	return nil
}

func redisKey(domain string) string {
	return redisKeyPrefix + domain
}
