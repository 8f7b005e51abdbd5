package roles

import "sort"

// OrganisationPayload es la vista exportable de una organisación.
type OrganisationPayload struct {
	Name     string `json:"name"`
	UniqueID string `json:"unique_id"`
}

// RolePayload es la vista exportable de un rol.
type RolePayload struct {
	UniqueID            string `json:"unique_id"`
	Code                string `json:"code"`
	Name                string `json:"name"`
	ExternalDescription string `json:"external_description"`
	InternalDescription string `json:"internal_description"`
}

// Payload es la forma con la que los permisos efectivos viajan a los
// portales: organisaciones y roles deduplicados por unique_id, más los
// pares [org_unique_id, role_unique_id] que los conectan.
type Payload struct {
	Organisations     []OrganisationPayload `json:"organisations"`
	Roles             []RolePayload         `json:"roles"`
	OrganisationRoles [][]string            `json:"organisation_roles"`
}

// BuildPayload arma el Payload a partir de los grants resueltos. La salida
// es determinista: organisaciones y roles ordenados por unique_id, pares en
// el mismo orden.
func BuildPayload(grants []Grant) Payload {
	p := Payload{
		Organisations:     []OrganisationPayload{},
		Roles:             []RolePayload{},
		OrganisationRoles: [][]string{},
	}
	orgSeen := make(map[string]bool)
	roleSeen := make(map[string]bool)
	pairSeen := make(map[[2]string]bool)

	for _, g := range grants {
		if !orgSeen[g.Organisation.UniqueID] {
			orgSeen[g.Organisation.UniqueID] = true
			p.Organisations = append(p.Organisations, OrganisationPayload{
				Name:     g.Organisation.Name,
				UniqueID: g.Organisation.UniqueID,
			})
		}
		if !roleSeen[g.Role.UniqueID] {
			roleSeen[g.Role.UniqueID] = true
			p.Roles = append(p.Roles, RolePayload{
				UniqueID:            g.Role.UniqueID,
				Code:                g.Role.Code,
				Name:                g.Role.Name,
				ExternalDescription: g.Role.ExternalDescription,
				InternalDescription: g.Role.InternalDescription,
			})
		}
		k := [2]string{g.Organisation.UniqueID, g.Role.UniqueID}
		if !pairSeen[k] {
			pairSeen[k] = true
			p.OrganisationRoles = append(p.OrganisationRoles, []string{k[0], k[1]})
		}
	}

	sort.Slice(p.Organisations, func(i, j int) bool { return p.Organisations[i].UniqueID < p.Organisations[j].UniqueID })
	sort.Slice(p.Roles, func(i, j int) bool { return p.Roles[i].UniqueID < p.Roles[j].UniqueID })
	sort.Slice(p.OrganisationRoles, func(i, j int) bool {
		if p.OrganisationRoles[i][0] != p.OrganisationRoles[j][0] {
			return p.OrganisationRoles[i][0] < p.OrganisationRoles[j][0]
		}
		return p.OrganisationRoles[i][1] < p.OrganisationRoles[j][1]
	})
	return p
}
