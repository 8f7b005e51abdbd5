package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

func (s *Store) CreateToken(ctx context.Context, t *model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tokens {
		if existing.RequestToken == t.RequestToken || existing.AuthToken == t.AuthToken {
			return repository.ErrConflict
		}
	}
	s.tokens[t.ID] = cloneToken(t)
	return nil
}

func (s *Store) GetUnboundToken(ctx context.Context, requestToken, portalID string) (*model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.RequestToken == requestToken && t.PortalID == portalID && !t.Bound() {
			return cloneToken(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) BindToken(ctx context.Context, tokenID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.Bound() {
		return repository.ErrAlreadyBound
	}
	uid := userID
	t.UserID = &uid
	return nil
}

func (s *Store) ConsumeBoundToken(ctx context.Context, authToken, portalID string) (*model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.tokens {
		if t.AuthToken == authToken && t.PortalID == portalID && t.Bound() {
			// Lectura y borrado bajo el mismo lock: a lo sumo un caller
			// observa el token.
			out := cloneToken(t)
			delete(s.tokens, id)
			return out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) DeleteToken(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, tokenID)
	return nil
}

func (s *Store) DeleteTokensOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, t := range s.tokens {
		if t.CreatedAt.Before(cutoff) {
			delete(s.tokens, id)
			n++
		}
	}
	return n, nil
}

func (s *Store) RequestTokenExists(ctx context.Context, requestToken string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.RequestToken == requestToken {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) AuthTokenExists(ctx context.Context, authToken string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tokens {
		if t.AuthToken == authToken {
			return true, nil
		}
	}
	return false, nil
}
