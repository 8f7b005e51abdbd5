// Package memory implementa cache.Client in-process sobre go-cache.
package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/portalgate/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

type Mem struct{ c *gocache.Cache }

// New crea un cache en memoria con el TTL por defecto dado.
func New(defaultTTL time.Duration) *Mem {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(ctx context.Context, k string) ([]byte, error) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, cache.ErrNotFound
	}
	b, _ := v.([]byte)
	return b, nil
}

func (m *Mem) Set(ctx context.Context, k string, v []byte, ttl time.Duration) error {
	m.c.Set(k, v, ttl)
	return nil
}

func (m *Mem) Delete(ctx context.Context, k string) error {
	m.c.Delete(k)
	return nil
}

func (m *Mem) Close() error { return nil }
