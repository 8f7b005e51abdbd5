package memory

import (
	"context"
	"sort"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

func (s *Store) CreateOrganisation(ctx context.Context, o *model.Organisation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.organisations {
		if existing.Name == o.Name || existing.UniqueID == o.UniqueID {
			return repository.ErrConflict
		}
	}
	co := *o
	s.organisations[o.ID] = &co
	return nil
}

func (s *Store) GetOrganisationByName(ctx context.Context, name string) (*model.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.organisations {
		if o.Name == name {
			co := *o
			return &co, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListOrganisations(ctx context.Context) ([]*model.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Organisation, 0, len(s.organisations))
	for _, o := range s.organisations {
		co := *o
		out = append(out, &co)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) OrganisationsByID(ctx context.Context, ids []string) (map[string]*model.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*model.Organisation, len(ids))
	for _, id := range ids {
		if o, ok := s.organisations[id]; ok {
			co := *o
			out[id] = &co
		}
	}
	return out, nil
}

func (s *Store) CreateRole(ctx context.Context, r *model.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.roles {
		if existing.PortalID == r.PortalID && existing.Name == r.Name {
			return repository.ErrConflict
		}
		if existing.UniqueID == r.UniqueID {
			return repository.ErrConflict
		}
	}
	cr := *r
	s.roles[r.ID] = &cr
	return nil
}

func (s *Store) RolesByPortal(ctx context.Context, portalID string) ([]*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Role
	for _, r := range s.roles {
		if r.PortalID == portalID {
			cr := *r
			out = append(out, &cr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) RolesByID(ctx context.Context, ids []string) (map[string]*model.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*model.Role, len(ids))
	for _, id := range ids {
		if r, ok := s.roles[id]; ok {
			cr := *r
			out[id] = &cr
		}
	}
	return out, nil
}

func (s *Store) AddRoleInheritance(ctx context.Context, roleID, baseRoleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[roleID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.roles[baseRoleID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range s.inheritance[roleID] {
		if existing == baseRoleID {
			return nil
		}
	}
	s.inheritance[roleID] = append(s.inheritance[roleID], baseRoleID)
	return nil
}

func (s *Store) RoleInheritance(ctx context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]string, len(s.inheritance))
	for k, v := range s.inheritance {
		out[k] = append([]string(nil), v...)
	}
	return out, nil
}

func (s *Store) CreateOrganisationRole(ctx context.Context, or *model.OrganisationRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orgRoles {
		if existing.OrganisationID == or.OrganisationID && existing.RoleID == or.RoleID {
			return repository.ErrConflict
		}
	}
	cor := *or
	s.orgRoles[or.ID] = &cor
	return nil
}

func (s *Store) OrganisationRolesFor(ctx context.Context, organisationIDs []string) ([]*model.OrganisationRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]bool, len(organisationIDs))
	for _, id := range organisationIDs {
		wanted[id] = true
	}
	var out []*model.OrganisationRole
	for _, or := range s.orgRoles {
		if wanted[or.OrganisationID] {
			cor := *or
			out = append(out, &cor)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
