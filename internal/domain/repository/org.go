package repository

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// OrganisationRepository define operaciones sobre organisaciones, roles y
// sus asociaciones. Es data de referencia propiedad de la autoridad, mutada
// solo por operaciones administrativas.
type OrganisationRepository interface {
	// CreateOrganisation registra una organisación.
	// Retorna ErrConflict si el nombre ya existe.
	CreateOrganisation(ctx context.Context, o *model.Organisation) error

	// GetOrganisationByName busca por nombre (único).
	GetOrganisationByName(ctx context.Context, name string) (*model.Organisation, error)

	// ListOrganisations retorna todas las organisaciones ordenadas por nombre.
	ListOrganisations(ctx context.Context) ([]*model.Organisation, error)

	// OrganisationsByID retorna las organisaciones pedidas, indexadas por ID.
	OrganisationsByID(ctx context.Context, ids []string) (map[string]*model.Organisation, error)

	// CreateRole registra un rol. Único por (portal, name).
	CreateRole(ctx context.Context, r *model.Role) error

	// RolesByPortal retorna todos los roles del portal.
	RolesByPortal(ctx context.Context, portalID string) ([]*model.Role, error)

	// RolesByID retorna los roles pedidos, indexados por ID.
	RolesByID(ctx context.Context, ids []string) (map[string]*model.Role, error)

	// AddRoleInheritance agrega la arista base → heredero: poseer el
	// organisation-role del rol base implica el del rol heredero en la
	// misma organisación.
	AddRoleInheritance(ctx context.Context, roleID, baseRoleID string) error

	// RoleInheritance retorna el grafo de herencia completo como lista de
	// adyacencia: role id heredero → ids de sus roles base (un salto).
	RoleInheritance(ctx context.Context) (map[string][]string, error)

	// CreateOrganisationRole asocia un rol a una organisación.
	// Retorna ErrConflict si el par ya existe.
	CreateOrganisationRole(ctx context.Context, or *model.OrganisationRole) error

	// OrganisationRolesFor retorna todas las asociaciones de las
	// organisaciones dadas, sin filtrar por portal ni por for_all_users.
	OrganisationRolesFor(ctx context.Context, organisationIDs []string) ([]*model.OrganisationRole, error)
}
