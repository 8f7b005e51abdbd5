// Package apiv2 contiene los controllers del flujo JWT de segunda
// generación.
package apiv2

import (
	"net/http"

	dto "github.com/dropDatabas3/portalgate/internal/http/dto/apiv2"
	httperrors "github.com/dropDatabas3/portalgate/internal/http/errors"
	"github.com/dropDatabas3/portalgate/internal/http/helpers"
	svc "github.com/dropDatabas3/portalgate/internal/http/services/apiv2"
)

type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Start maneja GET /api2/?message=
// Decodifica el intento de login y lo devuelve como JSON.
func (c *Controller) Start(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("message is required"))
		return
	}

	ticket, err := c.service.Start(r.Context(), message)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.StartResponse{
		LoginSuccessURL:        ticket.SuccessURL,
		ForceSSOLogin:          ticket.ForceSSOLogin,
		UnauthenticatedIsOkURL: ticket.UnauthenticatedURL,
	})
}

// AuthorizeRedirect maneja GET /api2/authorize?message=
// Sin sesión de navegador no hay a quién autorizar: si el portal aceptó
// usuarios no autenticados, rebota a su unauthenticated_is_ok_url; si no,
// exige credenciales (que van por POST).
func (c *Controller) AuthorizeRedirect(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("message is required"))
		return
	}

	ticket, err := c.service.Start(r.Context(), message)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if !ticket.ForceSSOLogin {
		http.Redirect(w, r, ticket.UnauthenticatedURL, http.StatusFound)
		return
	}
	httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("credentials required"))
}

// Authorize maneja POST /api2/authorize
func (c *Controller) Authorize(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthorizeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Message == "" || req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("message, username and password are required"))
		return
	}

	out, redirect, err := c.service.Authorize(r.Context(), req.Message, req.Username, req.Password)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AuthorizeResponse{Message: out, RedirectURL: redirect})
}

// CheckCredentials maneja POST /api2/check_credentials
func (c *Controller) CheckCredentials(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckCredentialsRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("message is required"))
		return
	}

	res, err := c.service.CheckCredentials(r.Context(), req.Message)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.CheckCredentialsResponse{
		User:  res.User,
		Roles: res.Roles,
	})
}

// Organisations maneja GET /api2/organisations?message=
func (c *Controller) Organisations(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	if message == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("message is required"))
		return
	}

	orgs, err := c.service.Organisations(r.Context(), message)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.OrganisationsResponse{Organisations: orgs})
}

// LogoutRedirect maneja GET /api2/logout y /api2/logout_redirect.
// Ambos resuelven el destino con la misma regla de dominios permitidos.
func (c *Controller) LogoutRedirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ssoKey := q.Get("sso_key")
	if ssoKey == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("sso_key is required"))
		return
	}

	next := q.Get("next")
	if next == "" {
		next = q.Get("domain")
	}
	target, err := c.service.LogoutTarget(r.Context(), ssoKey, next)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
