// Package suite runs the game key store tests against a disposable redis:7-alpine container.
package suite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerLifetime = 120 // seconds
	startupTimeout    = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "7-alpine"
)

// SkipEnv - set to any value to skip the container-backed store tests, e.g. on machines without docker.
const SkipEnv = "SKIP_REDIS_TESTS"

// Suite - one empty Redis per test, removed in t.Cleanup.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Redis *redis.Client
	Addr  string
}

// NewRedis - skips the test when docker is unavailable or SkipEnv is set.
func NewRedis(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if os.Getenv(SkipEnv) != "" {
		t.Skipf("%s is set", SkipEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	// docker hard-kills the container even if cleanup never runs
	_ = resource.Expire(containerLifetime)

	addr := resource.GetHostPort(redisPort)

	client, err := waitForRedis(ctx, pool, addr)
	if err != nil {
		_ = pool.Purge(resource)
		t.Fatalf("redis at %s never became ready: %v", addr, err)
	}

	t.Cleanup(func() {
		_ = client.Close()

		if err := pool.Purge(resource); err != nil {
			t.Errorf("could not remove redis container: %v", err)
		}
	})

	return ctx, &Suite{
		T:      t,
		Logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		Redis:  client,
		Addr:   addr,
	}
}

// waitForRedis - retries with backoff until the container answers PING, then empties db 0.
func waitForRedis(ctx context.Context, pool *dockertest.Pool, addr string) (*redis.Client, error) {
	pool.MaxWait = startupTimeout

	var client *redis.Client
	err := pool.Retry(func() error {
		if client != nil {
			_ = client.Close()
		}

		client = redis.NewClient(&redis.Options{Addr: addr})

		return client.Ping(ctx).Err()
	})
	if err != nil {
		return nil, err
	}

	if err = client.FlushDB(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("could not flush database: %w", err)
	}

	return client, nil
}

// TTL - remaining lifetime of a key as Redis reports it.
func (that *Suite) TTL(ctx context.Context, key string) time.Duration {
	that.Helper()

	ttl, err := that.Redis.TTL(ctx, key).Result()
	if err != nil {
		that.Fatalf("could not read ttl of %s: %v", key, err)
	}

	return ttl
}
