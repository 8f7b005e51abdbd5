// Package admin contiene los controllers de la API administrativa.
package admin

import (
	"net/http"

	dto "github.com/dropDatabas3/portalgate/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/portalgate/internal/http/errors"
	"github.com/dropDatabas3/portalgate/internal/http/helpers"
	svc "github.com/dropDatabas3/portalgate/internal/http/services/admin"
	"github.com/dropDatabas3/portalgate/internal/invite"
	"github.com/dropDatabas3/portalgate/internal/keystore"
)

type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// CreatePortal maneja POST /v1/admin/portals
// La respuesta incluye el sso_secret: es la única vez que se expone.
func (c *Controller) CreatePortal(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePortalRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.RedirectURL == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name and redirect_url are required"))
		return
	}

	p, err := c.service.CreatePortal(r.Context(), keystore.CreateInput{
		Name:             req.Name,
		RedirectURL:      req.RedirectURL,
		VisitURL:         req.VisitURL,
		AllowedDomain:    req.AllowedDomain,
		AllowMigrateUser: req.AllowMigrateUser,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.PortalWithSecretResponse{
		PortalResponse: dto.PortalFrom(p),
		SSOSecret:      p.SSOSecret,
	})
}

// ListPortals maneja GET /v1/admin/portals
func (c *Controller) ListPortals(w http.ResponseWriter, r *http.Request) {
	all, err := c.service.ListPortals(r.Context())
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out := make([]dto.PortalResponse, 0, len(all))
	for _, p := range all {
		out = append(out, dto.PortalFrom(p))
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}

// RotatePortal maneja POST /v1/admin/portals/rotate
func (c *Controller) RotatePortal(w http.ResponseWriter, r *http.Request) {
	var req dto.RotatePortalRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.PortalID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("portal_id is required"))
		return
	}

	p, err := c.service.RotatePortal(r.Context(), req.PortalID)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.PortalWithSecretResponse{
		PortalResponse: dto.PortalFrom(p),
		SSOSecret:      p.SSOSecret,
	})
}

// CreateInvitation maneja POST /v1/admin/invitations
func (c *Controller) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvitationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("name and email are required"))
		return
	}

	inv, err := c.service.CreateInvitation(r.Context(), invite.CreateInput{
		Name:         req.Name,
		Email:        req.Email,
		Organisation: req.Organisation,
		Language:     req.Language,
		PortalIDs:    req.PortalIDs,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.InvitationFrom(inv))
}

// ResendInvitation maneja POST /v1/admin/invitations/resend
func (c *Controller) ResendInvitation(w http.ResponseWriter, r *http.Request) {
	var req dto.ResendInvitationRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.InvitationID == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("invitation_id is required"))
		return
	}

	if err := c.service.SendInvitation(r.Context(), req.InvitationID); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
