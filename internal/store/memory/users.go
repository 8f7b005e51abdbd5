package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func (s *Store) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := rec.user
	return &u, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findUserLocked(func(u *model.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.findUserLocked(func(u *model.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (s *Store) findUserLocked(match func(*model.User) bool) (*model.User, error) {
	for _, rec := range s.users {
		if match(&rec.user) {
			u := rec.user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	s.mu.RLock()
	var rec *userRecord
	for _, r := range s.users {
		if strings.EqualFold(r.user.Username, username) {
			rec = r
			break
		}
	}
	s.mu.RUnlock()

	if rec == nil {
		return nil, directory.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return nil, directory.ErrInvalidCredentials
	}
	if !rec.user.IsActive {
		return nil, directory.ErrInactive
	}
	u := rec.user
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, in directory.CreateUserInput) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Username, in.Username) {
			return nil, repository.ErrConflict
		}
	}

	now := time.Now().UTC()
	u := model.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		IsActive:  in.Active,
		CreatedAt: now,
	}
	s.users[u.ID] = &userRecord{user: u, passwordHash: hash}

	// Cuenta y perfil nacen juntos, siempre.
	if err := s.createProfileLocked(&model.UserProfile{
		UserID:    u.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		delete(s.users, u.ID)
		return nil, err
	}

	out := u
	return &out, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.user.Username = u.Username
	rec.user.FirstName = u.FirstName
	rec.user.LastName = u.LastName
	rec.user.Email = u.Email
	rec.user.IsStaff = u.IsStaff
	rec.user.IsSuperuser = u.IsSuperuser
	return nil
}

func (s *Store) SetActive(ctx context.Context, userID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.user.IsActive = active
	return nil
}

func (s *Store) SetPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.passwordHash = hash
	return nil
}
