// Package redis implementa cache.Client sobre go-redis.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/portalgate/internal/cache"
	rdb "github.com/redis/go-redis/v9"
)

type Redis struct {
	client *rdb.Client
	prefix string
	ttl    time.Duration
}

// Config configura el cliente redis.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// New crea un cache redis y verifica la conexión.
func New(ctx context.Context, cfg Config) (*Redis, error) {
	client := rdb.NewClient(&rdb.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "pg:"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, k string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+k).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, cache.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, k string, v []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.client.Set(ctx, r.prefix+k, v, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, k string) error {
	return r.client.Del(ctx, r.prefix+k).Err()
}

func (r *Redis) Close() error { return r.client.Close() }

// Client expone la conexión subyacente para quien comparte el redis
// (ej: el rate limiter).
func (r *Redis) Client() *rdb.Client { return r.client }
