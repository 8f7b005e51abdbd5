// Package sso contiene los controllers del handshake v1.
package sso

import (
	"net/http"

	dto "github.com/dropDatabas3/portalgate/internal/http/dto/sso"
	httperrors "github.com/dropDatabas3/portalgate/internal/http/errors"
	"github.com/dropDatabas3/portalgate/internal/http/helpers"
	svc "github.com/dropDatabas3/portalgate/internal/http/services/sso"
)

type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// RequestToken maneja GET /sso/request_token?sso_key=
func (c *Controller) RequestToken(w http.ResponseWriter, r *http.Request) {
	ssoKey := r.URL.Query().Get("sso_key")
	if ssoKey == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("sso_key is required"))
		return
	}

	env, err := c.service.RequestToken(r.Context(), ssoKey)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.EnvelopeResponse{Envelope: env})
}

// Authorize maneja POST /sso/authorize
func (c *Controller) Authorize(w http.ResponseWriter, r *http.Request) {
	var req dto.AuthorizeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.SSOKey == "" || req.Envelope == "" || req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("sso_key, envelope, username and password are required"))
		return
	}

	env, redirect, err := c.service.Authorize(r.Context(), req.SSOKey, req.Envelope, req.Username, req.Password)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AuthorizeResponse{Envelope: env, RedirectURL: redirect})
}

// Verify maneja GET /sso/verify?sso_key=&envelope=
func (c *Controller) Verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ssoKey, env := q.Get("sso_key"), q.Get("envelope")
	if ssoKey == "" || env == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("sso_key and envelope are required"))
		return
	}

	res, err := c.service.Verify(r.Context(), ssoKey, env)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.VerifyResponse{
		User:     res.User,
		Roles:    res.Roles,
		Envelope: res.Envelope,
	})
}

// LogoutRedirect maneja GET /sso/logout_redirect?sso_key=&next=
// Responde 302 hacia el destino resuelto.
func (c *Controller) LogoutRedirect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ssoKey := q.Get("sso_key")
	if ssoKey == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("sso_key is required"))
		return
	}

	target, err := c.service.LogoutTarget(r.Context(), ssoKey, q.Get("next"))
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// PortalAction maneja GET /sso/portal_action?sso_key=&action=
// Acciones: visit (URL pública del portal) y logout.
func (c *Controller) PortalAction(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ssoKey, action := q.Get("sso_key"), q.Get("action")
	if ssoKey == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("sso_key is required"))
		return
	}

	var (
		target string
		err    error
	)
	switch action {
	case "logout":
		target, err = c.service.LogoutTarget(r.Context(), ssoKey, q.Get("next"))
	case "visit", "":
		target, err = c.service.VisitTarget(r.Context(), ssoKey)
	default:
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("unknown action"))
		return
	}
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
