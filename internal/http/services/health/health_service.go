// Package health contiene el service de health checks.
package health

import (
	"context"
	"time"

	dto "github.com/dropDatabas3/portalgate/internal/http/dto/health"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
)

// Deps contiene los checks inyectables. Un check nil se omite.
type Deps struct {
	StoreCheck func(ctx context.Context) error
	CacheCheck func(ctx context.Context) error
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Check evalúa los componentes. El store es crítico: si falla, el estado
// global es unavailable. El cache solo degrada.
func (s *Service) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("health"))

	resp := dto.HealthResponse{
		Status:     "ready",
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  time.Now().UTC(),
	}

	if s.deps.StoreCheck != nil {
		if err := s.deps.StoreCheck(ctx); err != nil {
			resp.Components["store"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			resp.Status = "unavailable"
			log.Error("store unavailable", logger.Err(err))
		} else {
			resp.Components["store"] = dto.HealthStatus{Status: "ok"}
		}
	}

	if s.deps.CacheCheck != nil {
		if err := s.deps.CacheCheck(ctx); err != nil {
			resp.Components["cache"] = dto.HealthStatus{Status: "error", Message: err.Error()}
			if resp.Status == "ready" {
				resp.Status = "degraded"
			}
			log.Warn("cache unavailable", logger.Err(err))
		} else {
			resp.Components["cache"] = dto.HealthStatus{Status: "ok"}
		}
	}

	return resp
}
