package memory

import (
	"context"
	"sort"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

func (s *Store) CreateProfile(ctx context.Context, p *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.createProfileLocked(p)
}

// createProfileLocked inserta el perfil; el caller debe tener el lock.
// Lo comparte CreateUser para mantener la invariante cuenta+perfil.
func (s *Store) createProfileLocked(p *model.UserProfile) error {
	if _, ok := s.profiles[p.UserID]; ok {
		return repository.ErrConflict
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[p.UserID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *Store) OrganisationsOf(ctx context.Context, userID string) ([]*model.Organisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Organisation
	for orgID := range s.profileOrgs[userID] {
		if o, ok := s.organisations[orgID]; ok {
			co := *o
			out = append(out, &co)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ExplicitOrganisationRoles(ctx context.Context, userID string) ([]*model.OrganisationRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.OrganisationRole
	for orID := range s.profileRoles[userID] {
		if or, ok := s.orgRoles[orID]; ok {
			cor := *or
			out = append(out, &cor)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) HasPortal(ctx context.Context, userID, portalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.profilePortals[userID][portalID], nil
}

func (s *Store) AttachPortal(ctx context.Context, userID, portalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	if s.profilePortals[userID] == nil {
		s.profilePortals[userID] = map[string]bool{}
	}
	s.profilePortals[userID][portalID] = true
	return nil
}

func (s *Store) AttachOrganisation(ctx context.Context, userID, organisationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	if s.profileOrgs[userID] == nil {
		s.profileOrgs[userID] = map[string]bool{}
	}
	s.profileOrgs[userID][organisationID] = true
	return nil
}

func (s *Store) AttachOrganisationRole(ctx context.Context, userID, organisationRoleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[userID]; !ok {
		return repository.ErrNotFound
	}
	if s.profileRoles[userID] == nil {
		s.profileRoles[userID] = map[string]bool{}
	}
	s.profileRoles[userID][organisationRoleID] = true
	return nil
}
