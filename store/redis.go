package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every document key.
const DefaultRedisPrefix = "extmodel:"

// RedisStore keeps documents in redis, one string key per document.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr string
	// Password is the Redis password (optional)
	Password string
	// DB is the Redis database number
	DB int
	// Prefix is prepended to all document keys
	Prefix string
}

// DefaultRedisConfig returns a default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "localhost:6379",
		Prefix: DefaultRedisPrefix,
	}
}

// NewRedisStore connects to redis and checks the connection.
func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", config.Addr, err)
	}
	return NewRedisStoreWithClient(client, config.Prefix), nil
}

// NewRedisStoreWithClient creates a store on an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, name string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+name).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(name)
		}
		return nil, err
	}
	return value, nil
}

func (r *RedisStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+name, data, 0).Err()
}

func (r *RedisStore) Delete(ctx context.Context, name string) error {
	return r.client.Del(ctx, r.prefix+name).Err()
}

func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	names := []string{}
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (r *RedisStore) Exists(ctx context.Context, name string) (bool, error) {
	count, err := r.client.Exists(ctx, r.prefix+name).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
