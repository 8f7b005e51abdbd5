// Package sweeper corre el barrido periódico de tokens expirados.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dropDatabas3/portalgate/internal/ledger"
	"github.com/dropDatabas3/portalgate/internal/metrics"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
)

// DefaultSchedule barre una vez por minuto, suficiente para un timeout de
// minutos.
const DefaultSchedule = "* * * * *"

type Sweeper struct {
	c      *cron.Cron
	ledger *ledger.Ledger
}

func New(lg *ledger.Ledger, schedule string) (*Sweeper, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Sweeper{c: cron.New(), ledger: lg}
	if _, err := s.c.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.ledger.SweepExpired(ctx, time.Now())
	if err != nil {
		logger.L().Error("token sweep failed", logger.Component("sweeper"), logger.Err(err))
		return
	}
	if n > 0 && metrics.TokensSweptTotal != nil {
		metrics.TokensSweptTotal.Add(float64(n))
	}
}

func (s *Sweeper) Start() { s.c.Start() }

// Stop frena el scheduler y espera a que termine el job en curso.
func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}
