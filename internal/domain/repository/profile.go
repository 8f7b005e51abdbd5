package repository

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// ProfileRepository define operaciones sobre perfiles de usuario y sus
// vínculos (organisaciones, portales, roles explícitos).
type ProfileRepository interface {
	// Create persiste un perfil nuevo. Uno por usuario.
	Create(ctx context.Context, p *model.UserProfile) error

	// GetByUserID busca el perfil de un usuario.
	GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error)

	// Update persiste los campos editables del perfil.
	Update(ctx context.Context, p *model.UserProfile) error

	// OrganisationsOf retorna las organisaciones del perfil ordenadas por ID.
	OrganisationsOf(ctx context.Context, userID string) ([]*model.Organisation, error)

	// ExplicitOrganisationRoles retorna los organisation-roles asignados
	// explícitamente al perfil (independiente de for_all_users).
	ExplicitOrganisationRoles(ctx context.Context, userID string) ([]*model.OrganisationRole, error)

	// HasPortal verifica si el perfil está vinculado al portal.
	HasPortal(ctx context.Context, userID, portalID string) (bool, error)

	// AttachPortal vincula el perfil a un portal. Idempotente.
	AttachPortal(ctx context.Context, userID, portalID string) error

	// AttachOrganisation vincula el perfil a una organisación. Idempotente.
	AttachOrganisation(ctx context.Context, userID, organisationID string) error

	// AttachOrganisationRole asigna explícitamente un organisation-role al
	// perfil. Idempotente.
	AttachOrganisationRole(ctx context.Context, userID, organisationRoleID string) error
}
