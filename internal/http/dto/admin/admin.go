// Package admin contiene los DTOs de la API administrativa.
package admin

import (
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// CreatePortalRequest registra un portal nuevo.
type CreatePortalRequest struct {
	Name             string `json:"name"`
	RedirectURL      string `json:"redirect_url"`
	VisitURL         string `json:"visit_url"`
	AllowedDomain    string `json:"allowed_domain"`
	AllowMigrateUser bool   `json:"allow_migrate_user"`
}

// PortalResponse es la vista administrativa de un portal. El sso_secret
// nunca viaja acá; solo en PortalWithSecretResponse al crear o rotar.
type PortalResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	SSOKey           string    `json:"sso_key"`
	RedirectURL      string    `json:"redirect_url"`
	VisitURL         string    `json:"visit_url"`
	AllowedDomain    string    `json:"allowed_domain"`
	AllowMigrateUser bool      `json:"allow_migrate_user"`
	CreatedAt        time.Time `json:"created_at"`
}

// PortalWithSecretResponse se devuelve únicamente cuando se acaba de
// generar el par de claves: es la única oportunidad de verlo.
type PortalWithSecretResponse struct {
	PortalResponse
	SSOSecret string `json:"sso_secret"`
}

// RotatePortalRequest pide la rotación de claves de un portal.
type RotatePortalRequest struct {
	PortalID string `json:"portal_id"`
}

// CreateInvitationRequest crea una invitación administrativa.
type CreateInvitationRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Organisation string   `json:"organisation"`
	Language     string   `json:"language"`
	PortalIDs    []string `json:"portal_ids"`
}

// InvitationResponse es la vista administrativa de una invitación. La
// activation key no se expone: viaja solo en el mail al destinatario.
type InvitationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Organisation string    `json:"organisation"`
	Language     string    `json:"language"`
	PortalIDs    []string  `json:"portal_ids"`
	IsActivated  bool      `json:"is_activated"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResendInvitationRequest re-manda el mail de activación.
type ResendInvitationRequest struct {
	InvitationID string `json:"invitation_id"`
}

// PortalFrom arma la vista administrativa desde la entidad.
func PortalFrom(p *model.Portal) PortalResponse {
	return PortalResponse{
		ID:               p.ID,
		Name:             p.Name,
		SSOKey:           p.SSOKey,
		RedirectURL:      p.RedirectURL,
		VisitURL:         p.VisitURL,
		AllowedDomain:    p.AllowedDomain,
		AllowMigrateUser: p.AllowMigrateUser,
		CreatedAt:        p.CreatedAt,
	}
}

// InvitationFrom arma la vista administrativa desde la entidad.
func InvitationFrom(inv *model.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:           inv.ID,
		Name:         inv.Name,
		Email:        inv.Email,
		Organisation: inv.Organisation,
		Language:     inv.Language,
		PortalIDs:    inv.PortalIDs,
		IsActivated:  inv.IsActivated,
		CreatedAt:    inv.CreatedAt,
	}
}
