// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	activationctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/activation"
	adminctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/admin"
	apiv2ctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/apiv2"
	healthctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/health"
	ssoctrl "github.com/dropDatabas3/portalgate/internal/http/controllers/sso"
	mw "github.com/dropDatabas3/portalgate/internal/http/middlewares"
	"github.com/dropDatabas3/portalgate/internal/rate"
)

// Deps contiene todo lo que el router necesita para registrar rutas.
type Deps struct {
	SSO        *ssoctrl.Controller
	APIv2      *apiv2ctrl.Controller
	Admin      *adminctrl.Controller
	Activation *activationctrl.Controller
	Health     *healthctrl.Controller

	// Metrics es el handler de /metrics (promhttp). nil lo deshabilita.
	Metrics http.Handler

	// Limiter aplica rate limiting a los flujos sso/api2. nil lo
	// deshabilita.
	Limiter rate.Limiter

	// AdminAPIKey protege /v1/admin. Vacía deja la API admin cerrada.
	AdminAPIKey string
}

// New construye el router con la cadena de middlewares global y los
// grupos de rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())
	r.Use(mw.WithMetrics())

	limited := mw.WithRateLimit(mw.RateLimitConfig{
		Limiter:   deps.Limiter,
		Whitelist: []string{"/healthz", "/readyz", "/metrics"},
	})

	r.Route("/sso", func(r chi.Router) {
		r.Use(limited)
		r.Get("/request_token", deps.SSO.RequestToken)
		r.Post("/authorize", deps.SSO.Authorize)
		r.Get("/verify", deps.SSO.Verify)
		r.Get("/logout_redirect", deps.SSO.LogoutRedirect)
		r.Get("/portal_action", deps.SSO.PortalAction)
	})

	r.Route("/api2", func(r chi.Router) {
		r.Use(limited)
		r.Get("/", deps.APIv2.Start)
		r.Get("/authorize", deps.APIv2.AuthorizeRedirect)
		r.Post("/authorize", deps.APIv2.Authorize)
		r.Post("/check_credentials", deps.APIv2.CheckCredentials)
		r.Get("/organisations", deps.APIv2.Organisations)
		r.Get("/logout", deps.APIv2.LogoutRedirect)
		r.Get("/logout_redirect", deps.APIv2.LogoutRedirect)
	})

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(mw.WithAdminKey(deps.AdminAPIKey))
		r.Post("/portals", deps.Admin.CreatePortal)
		r.Get("/portals", deps.Admin.ListPortals)
		r.Post("/portals/rotate", deps.Admin.RotatePortal)
		r.Post("/invitations", deps.Admin.CreateInvitation)
		r.Post("/invitations/resend", deps.Admin.ResendInvitation)
	})

	r.With(limited).Post("/activate/{key}", deps.Activation.Activate)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	return r
}
