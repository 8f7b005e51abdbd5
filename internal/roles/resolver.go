// Package roles implementa la resolución de permisos efectivos: qué pares
// (organisación, rol) puede ejercer un usuario en un portal, combinando
// asignaciones directas, asignaciones para toda la organisación y el grafo
// de herencia de roles.
package roles

import (
	"context"
	"fmt"
	"sort"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

// Grant es un permiso efectivo: el usuario puede ejercer el rol en nombre
// de la organisación.
type Grant struct {
	Organisation *model.Organisation
	Role         *model.Role
}

// Resolution expone los cuatro conjuntos intermedios de la resolución, para
// auditoría y debugging. Grants es la unión deduplicada de DirectResult e
// IndirectResult.
type Resolution struct {
	// RelevantRoles son todos los roles del portal consultado.
	RelevantRoles []*model.Role

	// DirectlyAccessible son los organisation-roles que el perfil posee
	// antes de filtrar por portal: los for_all_users de sus organisaciones
	// más los asignados explícitamente. Pueden referir roles de cualquier
	// portal.
	DirectlyAccessible []*model.OrganisationRole

	// DirectResult son los DirectlyAccessible cuyo rol pertenece al portal.
	DirectResult []Grant

	// IndirectResult son los organisation-roles (O, R) donde R es un rol
	// del portal que hereda, por una cadena de una o más aristas, de algún
	// rol base que el perfil posee en la misma organisación O.
	IndirectResult []Grant

	Grants []Grant
}

// Resolver calcula permisos efectivos a partir de los repositorios de
// organisaciones y perfiles.
type Resolver struct {
	orgs     repository.OrganisationRepository
	profiles repository.ProfileRepository
}

func NewResolver(orgs repository.OrganisationRepository, profiles repository.ProfileRepository) *Resolver {
	return &Resolver{orgs: orgs, profiles: profiles}
}

// Resolve retorna los permisos efectivos del usuario en el portal,
// deduplicados por (organisación, rol) y en orden determinista.
func (r *Resolver) Resolve(ctx context.Context, userID, portalID string) ([]Grant, error) {
	res, err := r.Explain(ctx, userID, portalID)
	if err != nil {
		return nil, err
	}
	return res.Grants, nil
}

// Explain corre la resolución completa y retorna los conjuntos intermedios
// además del resultado. Resolve es Explain sin los intermedios.
func (r *Resolver) Explain(ctx context.Context, userID, portalID string) (*Resolution, error) {
	res := &Resolution{}

	// 1. Roles del portal.
	relevant, err := r.orgs.RolesByPortal(ctx, portalID)
	if err != nil {
		return nil, fmt.Errorf("roles: portal roles: %w", err)
	}
	res.RelevantRoles = relevant
	relevantByID := make(map[string]*model.Role, len(relevant))
	for _, role := range relevant {
		relevantByID[role.ID] = role
	}

	// 2. Organisation-roles directamente accesibles: los for_all_users de
	// las organisaciones del perfil más los asignados explícitamente. Un
	// perfil sin organisaciones conserva solo los explícitos.
	memberOrgs, err := r.profiles.OrganisationsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("roles: profile organisations: %w", err)
	}
	memberOrgIDs := make([]string, 0, len(memberOrgs))
	for _, o := range memberOrgs {
		memberOrgIDs = append(memberOrgIDs, o.ID)
	}

	memberOrgRoles, err := r.orgs.OrganisationRolesFor(ctx, memberOrgIDs)
	if err != nil {
		return nil, fmt.Errorf("roles: organisation roles: %w", err)
	}
	explicit, err := r.profiles.ExplicitOrganisationRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("roles: explicit roles: %w", err)
	}

	type pair struct{ org, role string }
	seen := make(map[pair]bool)
	accessible := make([]*model.OrganisationRole, 0, len(explicit))
	add := func(or *model.OrganisationRole) {
		k := pair{or.OrganisationID, or.RoleID}
		if !seen[k] {
			seen[k] = true
			accessible = append(accessible, or)
		}
	}
	for _, or := range memberOrgRoles {
		if or.ForAllUsers {
			add(or)
		}
	}
	for _, or := range explicit {
		add(or)
	}
	res.DirectlyAccessible = accessible

	// 3. Resultado directo: accesibles cuyo rol pertenece al portal. Se
	// materializa más abajo, junto con el indirecto, cuando ya cargamos
	// las entidades completas.
	directPairs := make([]pair, 0)
	for _, or := range accessible {
		if _, ok := relevantByID[or.RoleID]; ok {
			directPairs = append(directPairs, pair{or.OrganisationID, or.RoleID})
		}
	}

	// 4. Resultado indirecto: por organisación, clausura transitiva del
	// grafo de herencia partiendo de los roles base que el perfil posee.
	// El visited-set garantiza terminación aunque el grafo tenga ciclos.
	inheritance, err := r.orgs.RoleInheritance(ctx)
	if err != nil {
		return nil, fmt.Errorf("roles: inheritance graph: %w", err)
	}
	inheritors := invert(inheritance)

	basesByOrg := make(map[string]map[string]bool)
	for _, or := range accessible {
		if basesByOrg[or.OrganisationID] == nil {
			basesByOrg[or.OrganisationID] = make(map[string]bool)
		}
		basesByOrg[or.OrganisationID][or.RoleID] = true
	}

	// Candidatos: organisation-roles existentes en cualquiera de las
	// organisaciones donde el perfil posee algo.
	candidateOrgIDs := make([]string, 0, len(basesByOrg))
	for orgID := range basesByOrg {
		candidateOrgIDs = append(candidateOrgIDs, orgID)
	}
	sort.Strings(candidateOrgIDs)
	candidates, err := r.orgs.OrganisationRolesFor(ctx, candidateOrgIDs)
	if err != nil {
		return nil, fmt.Errorf("roles: candidate roles: %w", err)
	}

	reachableByOrg := make(map[string]map[string]bool, len(basesByOrg))
	for orgID, bases := range basesByOrg {
		reachableByOrg[orgID] = closure(bases, inheritors)
	}

	indirectPairs := make(map[pair]*model.OrganisationRole)
	for _, or := range candidates {
		if _, ok := relevantByID[or.RoleID]; !ok {
			continue
		}
		reach := reachableByOrg[or.OrganisationID]
		if reach != nil && reach[or.RoleID] {
			indirectPairs[pair{or.OrganisationID, or.RoleID}] = or
		}
	}

	// 5. Materializar grants con las entidades completas y deduplicar la
	// unión por (organisación, rol).
	union := make(map[pair]bool)
	var orgIDs, roleIDs []string
	collect := func(orgID, roleID string) {
		k := pair{orgID, roleID}
		if !union[k] {
			union[k] = true
			orgIDs = append(orgIDs, orgID)
			roleIDs = append(roleIDs, roleID)
		}
	}
	for _, k := range directPairs {
		collect(k.org, k.role)
	}
	for k := range indirectPairs {
		collect(k.org, k.role)
	}

	orgsByID, err := r.orgs.OrganisationsByID(ctx, orgIDs)
	if err != nil {
		return nil, fmt.Errorf("roles: load organisations: %w", err)
	}
	rolesByID, err := r.orgs.RolesByID(ctx, roleIDs)
	if err != nil {
		return nil, fmt.Errorf("roles: load roles: %w", err)
	}
	grantOf := func(k pair) (Grant, bool) {
		o, okO := orgsByID[k.org]
		role, okR := rolesByID[k.role]
		if !okO || !okR {
			return Grant{}, false
		}
		return Grant{Organisation: o, Role: role}, true
	}

	for _, k := range directPairs {
		if g, ok := grantOf(k); ok {
			res.DirectResult = append(res.DirectResult, g)
		}
	}
	for k := range indirectPairs {
		if g, ok := grantOf(k); ok {
			res.IndirectResult = append(res.IndirectResult, g)
		}
	}
	sortGrants(res.IndirectResult)

	unionPairs := make([]pair, 0, len(union))
	for k := range union {
		unionPairs = append(unionPairs, k)
	}
	for _, k := range unionPairs {
		if g, ok := grantOf(k); ok {
			res.Grants = append(res.Grants, g)
		}
	}
	sortGrants(res.Grants)

	return res, nil
}

// closure retorna todos los roles alcanzables desde los roles base dados
// siguiendo aristas base → heredero, cualquier cantidad de saltos. Los
// propios base quedan excluidos del resultado salvo que sean alcanzables
// por un ciclo.
func closure(bases map[string]bool, inheritors map[string][]string) map[string]bool {
	reached := make(map[string]bool)
	visited := make(map[string]bool)
	stack := make([]string, 0, len(bases))
	for b := range bases {
		stack = append(stack, b)
		visited[b] = true
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range inheritors[cur] {
			reached[next] = true
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return reached
}

// invert transforma el mapa heredero → bases en base → herederos.
func invert(inheritance map[string][]string) map[string][]string {
	out := make(map[string][]string, len(inheritance))
	for inheritor, bases := range inheritance {
		for _, base := range bases {
			out[base] = append(out[base], inheritor)
		}
	}
	return out
}

func sortGrants(gs []Grant) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].Organisation.ID != gs[j].Organisation.ID {
			return gs[i].Organisation.ID < gs[j].Organisation.ID
		}
		return gs[i].Role.ID < gs[j].Role.ID
	})
}
