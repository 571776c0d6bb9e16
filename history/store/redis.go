package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adanianlabs/hrassist/history"
)

// RedisStore implements history.Store using Redis lists, one list per
// session.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ history.Store = (*RedisStore)(nil)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string        // Redis server address (e.g., "localhost:6379")
	Password string        // Redis password (if any)
	DB       int           // Redis database number
	Prefix   string        // Key prefix for namespacing
	TTL      time.Duration // Session expiry (0 means no expiration)
}

// NewRedisStore creates a Redis-backed history store.
func NewRedisStore(config *RedisConfig) *RedisStore {
	if config == nil {
		config = &RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "hrassist:history:",
		}
	}
	if config.Prefix == "" {
		config.Prefix = "hrassist:history:"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &RedisStore{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

func (s *RedisStore) sessionKey(sessionID string) string {
	return s.prefix + sessionID
}

// Append pushes an exchange onto the session list.
func (s *RedisStore) Append(ctx context.Context, exchange *history.Exchange) error {
	if exchange == nil {
		return fmt.Errorf("exchange cannot be nil")
	}
	if exchange.SessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if exchange.ID == "" {
		exchange.ID = history.GenerateExchangeID()
	}
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now()
	}

	data, err := json.Marshal(exchange)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}

	key := s.sessionKey(exchange.SessionID)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to store exchange in Redis: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set session TTL: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit exchanges for the session, newest first.
func (s *RedisStore) Recent(ctx context.Context, sessionID string, limit int) ([]*history.Exchange, error) {
	key := s.sessionKey(sessionID)

	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := s.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}

	exchanges := make([]*history.Exchange, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var exchange history.Exchange
		if err := json.Unmarshal([]byte(raw[i]), &exchange); err != nil {
			return nil, fmt.Errorf("failed to unmarshal exchange: %w", err)
		}
		exchanges = append(exchanges, &exchange)
	}
	return exchanges, nil
}

// ClearSession drops the session list.
func (s *RedisStore) ClearSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
