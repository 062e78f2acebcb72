// Package redisrepo stores credentials in Redis, one namespace per browser
// session, for the portal web server.
package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/token"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "portal:session"
)

// Config captures the settings for establishing a Redis connection.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

var _ token.Repo = (*Repo)(nil)

// Repo is a token.Repo scoped to one browser session.
// Key format: portal:session:<session_id>:<key>
type Repo struct {
	client    redis.Cmdable
	sessionID string
	ttl       time.Duration
	timeout   time.Duration
}

// New creates a Repo for sessionID. Values expire after ttl; zero keeps them forever.
func New(client redis.Cmdable, sessionID string, ttl time.Duration) *Repo {
	return &Repo{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
		timeout:   defaultTimeout,
	}
}

func (r *Repo) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	value, err := r.client.Get(ctx, r.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", token.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (r *Repo) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.Key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Repo) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.client.Del(ctx, r.Key(key)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return token.ErrNotFound
	}
	return nil
}

// Key returns the namespaced Redis key for key.
func (r *Repo) Key(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, r.sessionID, key)
}
