// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	"github.com/dropDatabas3/portalgate/internal/http/helpers"
	svc "github.com/dropDatabas3/portalgate/internal/http/services/health"
)

type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Healthz maneja GET /healthz (liveness: el proceso responde).
func (c *Controller) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz maneja GET /readyz (readiness: dependencias disponibles).
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := c.service.Check(r.Context())

	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
