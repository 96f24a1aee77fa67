package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	scanCount = 100
	mgetBatch = 100
)

type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisStorage struct {
	client *redis.Client
	closed atomic.Bool
}

func NewRedisStorage(ctx context.Context, opts RedisOptions) (*RedisStorage, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})

	if _, err := conn.Ping(ctx).Result(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{client: conn}, nil
}

// NewRedisStorageFromClient - wraps an already connected client.
func NewRedisStorageFromClient(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (that *RedisStorage) conn() (*redis.Client, error) {
	if that == nil || that.client == nil || that.closed.Load() {
		return nil, ErrNotInitialized
	}

	return that.client, nil
}

func (that *RedisStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	conn, err := that.conn()
	if err != nil {
		return err
	}

	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	if err = conn.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (that *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := that.conn()
	if err != nil {
		return nil, err
	}

	value, err := conn.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return value, nil
}

func (that *RedisStorage) Delete(ctx context.Context, key string) error {
	conn, err := that.conn()
	if err != nil {
		return err
	}

	deleted, err := conn.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	if deleted == 0 {
		return ErrKeyNotFound
	}

	return nil
}

// ListByPrefix - values of every live key starting with prefix. Keys expiring between
// the scan and the read are skipped.
func (that *RedisStorage) ListByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	conn, err := that.conn()
	if err != nil {
		return nil, err
	}

	var keys []string

	iter := conn.Scan(ctx, 0, escapeGlob(prefix)+"*", scanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err = iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan %s*: %w", prefix, err)
	}

	values := make([][]byte, 0, len(keys))
	for start := 0; start < len(keys); start += mgetBatch {
		end := min(start+mgetBatch, len(keys))

		batch, err := conn.MGet(ctx, keys[start:end]...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s*: %w", prefix, err)
		}

		for _, value := range batch {
			if str, ok := value.(string); ok {
				values = append(values, []byte(str))
			}
		}
	}

	return values, nil
}

func (that *RedisStorage) Ping(ctx context.Context) error {
	conn, err := that.conn()
	if err != nil {
		return err
	}

	if err = conn.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

func (that *RedisStorage) Close() error {
	if that == nil || that.client == nil || that.closed.Swap(true) {
		return nil
	}

	if err := that.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis: %w", err)
	}

	return nil
}

// escapeGlob - makes the prefix literal inside a SCAN MATCH pattern.
func escapeGlob(prefix string) string {
	var builder strings.Builder
	for _, r := range prefix {
		switch r {
		case '*', '?', '[', ']', '\\':
			builder.WriteRune('\\')
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
