// Package admin contiene el service de la API administrativa: alta y
// rotación de portales, e invitaciones.
package admin

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/invite"
	"github.com/dropDatabas3/portalgate/internal/keystore"
)

type Service struct {
	keys    *keystore.KeyStore
	portals repository.PortalRepository
	invites *invite.Service
}

func NewService(keys *keystore.KeyStore, portals repository.PortalRepository, invites *invite.Service) *Service {
	return &Service{keys: keys, portals: portals, invites: invites}
}

// CreatePortal registra un portal con un par sso_key/sso_secret nuevo.
func (s *Service) CreatePortal(ctx context.Context, in keystore.CreateInput) (*model.Portal, error) {
	return s.keys.Create(ctx, in)
}

// ListPortals lista los portales registrados.
func (s *Service) ListPortals(ctx context.Context) ([]*model.Portal, error) {
	return s.portals.List(ctx)
}

// RotatePortal reemplaza el par de claves del portal. Los sobres en vuelo
// firmados con el secret anterior dejan de verificar.
func (s *Service) RotatePortal(ctx context.Context, portalID string) (*model.Portal, error) {
	return s.keys.Rotate(ctx, portalID)
}

// CreateInvitation registra la invitación. El mail sale aparte, vía
// SendInvitation.
func (s *Service) CreateInvitation(ctx context.Context, in invite.CreateInput) (*model.Invitation, error) {
	return s.invites.Create(ctx, in)
}

// SendInvitation manda (o re-manda) el mail de activación.
func (s *Service) SendInvitation(ctx context.Context, invitationID string) error {
	return s.invites.SendActivation(ctx, invitationID)
}
