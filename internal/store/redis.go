package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore keeps each collection under a prefixed redis key.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zerolog.Logger
}

// NewRedisStore connects to redis at addr and verifies the connection.
func NewRedisStore(addr, password string, db int, logger *zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Str("addr", addr).Msg("Redis store initialized")
	return &RedisStore{client: client, prefix: "nioi:", logger: logger}, nil
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + collection
}

func (s *RedisStore) Load(ctx context.Context, collection string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load collection %s: %w", collection, err)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, collection string, data []byte) error {
	if err := s.client.Set(ctx, s.key(collection), data, 0).Err(); err != nil {
		return fmt.Errorf("save collection %s: %w", collection, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, collection string) error {
	if err := s.client.Del(ctx, s.key(collection)).Err(); err != nil {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

// PingContext reports backend health for the readiness endpoint.
func (s *RedisStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
