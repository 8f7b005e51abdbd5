package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const userCols = `id, username, first_name, last_name, email, is_active, is_staff, is_superuser, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM app_user WHERE id = $1 LIMIT 1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM app_user WHERE LOWER(username) = LOWER($1) LIMIT 1`
	return scanUser(s.pool.QueryRow(ctx, q, username))
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userCols + ` FROM app_user WHERE LOWER(email) = LOWER($1) LIMIT 1`
	return scanUser(s.pool.QueryRow(ctx, q, email))
}

// Authenticate no distingue usuario inexistente de contraseña incorrecta;
// ambas fallas son ErrInvalidCredentials. Una cuenta inactiva con la
// contraseña correcta es ErrInactive.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	const q = `SELECT ` + userCols + `, password_hash FROM app_user WHERE LOWER(username) = LOWER($1) LIMIT 1`
	var u model.User
	var hash string
	err := s.pool.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.FirstName,
		&u.LastName, &u.Email, &u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, directory.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, directory.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, directory.ErrInactive
	}
	return &u, nil
}

// CreateUser crea la cuenta y su perfil en la misma transacción: nunca
// existe una cuenta sin perfil.
func (s *Store) CreateUser(ctx context.Context, in directory.CreateUserInput) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u := model.User{
		ID:        uuid.NewString(),
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		IsActive:  in.Active,
	}
	const qUser = `
INSERT INTO app_user (id, username, password_hash, first_name, last_name, email, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`
	err = tx.QueryRow(ctx, qUser, u.ID, u.Username, string(hash), u.FirstName,
		u.LastName, u.Email, u.IsActive).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	const qProfile = `INSERT INTO user_profile (user_id) VALUES ($1)`
	if _, err := tx.Exec(ctx, qProfile, u.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	const q = `
UPDATE app_user
SET username = $2, first_name = $3, last_name = $4, email = $5,
    is_active = $6, is_staff = $7, is_superuser = $8
WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, u.ID, u.Username, u.FirstName, u.LastName,
		u.Email, u.IsActive, u.IsStaff, u.IsSuperuser)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, userID string, active bool) error {
	const q = `UPDATE app_user SET is_active = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) SetPassword(ctx context.Context, userID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `UPDATE app_user SET password_hash = $2 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, userID, string(hash))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
