package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship-client/internal/session"
)

// Store is a Redis-backed session store, letting several client processes
// share one login
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis session store
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	return &Store{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

func (s *Store) Token(ctx context.Context) (string, error) {
	return s.get(ctx, tokenKey(s.cfg.Namespace))
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, tokenKey(s.cfg.Namespace), token, s.cfg.TokenTTL).Err()
}

func (s *Store) RemoveToken(ctx context.Context) error {
	return s.client.Del(ctx, tokenKey(s.cfg.Namespace)).Err()
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, refreshTokenKey(s.cfg.Namespace))
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, refreshTokenKey(s.cfg.Namespace), token, s.cfg.TokenTTL).Err()
}

func (s *Store) RemoveRefreshToken(ctx context.Context) error {
	return s.client.Del(ctx, refreshTokenKey(s.cfg.Namespace)).Err()
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}
