package repository

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// InvitationRepository define operaciones sobre invitaciones.
type InvitationRepository interface {
	// Create persiste una invitación nueva.
	Create(ctx context.Context, inv *model.Invitation) error

	// GetByID busca una invitación por ID.
	GetByID(ctx context.Context, id string) (*model.Invitation, error)

	// GetByActivationKey busca una invitación por su activation key.
	GetByActivationKey(ctx context.Context, key string) (*model.Invitation, error)

	// Update persiste los cambios de una invitación (key rotada, activación).
	Update(ctx context.Context, inv *model.Invitation) error

	// ActivationKeyExists verifica si una activation key ya está en uso.
	ActivationKeyExists(ctx context.Context, key string) (bool, error)
}
