// Package pg implementa los repositorios sobre PostgreSQL usando pgx. La
// unicidad de claves y tokens descansa en las constraints del esquema; el
// consumo single-use de tokens usa DELETE ... RETURNING para que a lo sumo
// un caller observe la fila.
package pg

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct{ pool *pgxpool.Pool }

// Config afina el pool. Los ceros usan defaults conservadores.
type Config struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 8
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB está caída igualmente levantamos y
	// dejamos que readyz lo refleje.
	if err := pool.Ping(ctx); err != nil {
		logger.L().Warn("pg pool startup ping failed", logger.Component("pg"), logger.Err(err))
	} else {
		logger.L().Info("pg pool ready", logger.Component("pg"))
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones, health checks).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// isUniqueViolation detecta violaciones de constraint de unicidad sin atar
// el resto del código al formato de error del driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
