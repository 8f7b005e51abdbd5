package memory

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

func cloneInvitation(inv *model.Invitation) *model.Invitation {
	ci := *inv
	ci.PortalIDs = append([]string(nil), inv.PortalIDs...)
	if inv.ActivationKey != nil {
		k := *inv.ActivationKey
		ci.ActivationKey = &k
	}
	if inv.ActivationKeyDate != nil {
		d := *inv.ActivationKeyDate
		ci.ActivationKeyDate = &d
	}
	if inv.ActivatedOn != nil {
		d := *inv.ActivatedOn
		ci.ActivatedOn = &d
	}
	if inv.UserID != nil {
		u := *inv.UserID
		ci.UserID = &u
	}
	return &ci
}

func (s *Store) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invitations[inv.ID] = cloneInvitation(inv)
	return nil
}

func (s *Store) GetInvitationByID(ctx context.Context, id string) (*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invitations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneInvitation(inv), nil
}

func (s *Store) GetInvitationByActivationKey(ctx context.Context, key string) (*model.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invitations {
		if inv.ActivationKey != nil && *inv.ActivationKey == key {
			return cloneInvitation(inv), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) UpdateInvitation(ctx context.Context, inv *model.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invitations[inv.ID]; !ok {
		return repository.ErrNotFound
	}
	s.invitations[inv.ID] = cloneInvitation(inv)
	return nil
}

func (s *Store) ActivationKeyExists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, inv := range s.invitations {
		if inv.ActivationKey != nil && *inv.ActivationKey == key {
			return true, nil
		}
	}
	return false, nil
}
