package memory

import (
	"context"
	"sort"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

func (s *Store) CreatePortal(ctx context.Context, p *model.Portal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.portals {
		if existing.SSOKey == p.SSOKey || existing.SSOSecret == p.SSOSecret {
			return repository.ErrConflict
		}
	}
	s.portals[p.ID] = clonePortal(p)
	return nil
}

func (s *Store) GetPortalByKey(ctx context.Context, ssoKey string) (*model.Portal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.portals {
		if p.SSOKey == ssoKey {
			return clonePortal(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetPortalByID(ctx context.Context, id string) (*model.Portal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.portals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePortal(p), nil
}

func (s *Store) ListPortals(ctx context.Context) ([]*model.Portal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Portal, 0, len(s.portals))
	for _, p := range s.portals {
		out = append(out, clonePortal(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdatePortalKeys(ctx context.Context, id, ssoKey, ssoSecret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.portals[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range s.portals {
		if otherID == id {
			continue
		}
		if other.SSOKey == ssoKey || other.SSOSecret == ssoSecret {
			return repository.ErrConflict
		}
	}
	p.SSOKey = ssoKey
	p.SSOSecret = ssoSecret
	return nil
}

func (s *Store) PortalKeyExists(ctx context.Context, ssoKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.portals {
		if p.SSOKey == ssoKey {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) PortalSecretExists(ctx context.Context, ssoSecret string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.portals {
		if p.SSOSecret == ssoSecret {
			return true, nil
		}
	}
	return false, nil
}
