// Package activation contiene el service de activación de invitaciones.
package activation

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/invite"
)

type Service struct {
	invites *invite.Service
}

func NewService(invites *invite.Service) *Service {
	return &Service{invites: invites}
}

// Activate consume la invitación y crea la cuenta con su perfil,
// portales y organisación.
func (s *Service) Activate(ctx context.Context, in invite.ActivateInput) (*model.User, error) {
	return s.invites.Activate(ctx, in)
}
