package pg

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateToken(ctx context.Context, t *model.Token) error {
	const q = `
INSERT INTO token (id, portal_id, request_token, auth_token, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := s.pool.Exec(ctx, q, t.ID, t.PortalID, t.RequestToken, t.AuthToken, t.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (s *Store) GetUnboundToken(ctx context.Context, requestToken, portalID string) (*model.Token, error) {
	const q = `
SELECT id, portal_id, request_token, auth_token, user_id, created_at
FROM token
WHERE request_token = $1 AND portal_id = $2 AND user_id IS NULL
LIMIT 1`
	var t model.Token
	err := s.pool.QueryRow(ctx, q, requestToken, portalID).
		Scan(&t.ID, &t.PortalID, &t.RequestToken, &t.AuthToken, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// BindToken asocia el usuario solo si la fila sigue sin asociar; el WHERE
// user_id IS NULL distingue "ya asociado" de "inexistente" en un segundo
// round-trip solo cuando hace falta.
func (s *Store) BindToken(ctx context.Context, tokenID, userID string) error {
	const q = `UPDATE token SET user_id = $2 WHERE id = $1 AND user_id IS NULL`
	tag, err := s.pool.Exec(ctx, q, tokenID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	const qExists = `SELECT EXISTS (SELECT 1 FROM token WHERE id = $1)`
	var exists bool
	if err := s.pool.QueryRow(ctx, qExists, tokenID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return repository.ErrAlreadyBound
	}
	return repository.ErrNotFound
}

// ConsumeBoundToken lee y destruye en una sola sentencia: DELETE ...
// RETURNING garantiza que a lo sumo un caller concurrente observa la fila.
func (s *Store) ConsumeBoundToken(ctx context.Context, authToken, portalID string) (*model.Token, error) {
	const q = `
DELETE FROM token
WHERE auth_token = $1 AND portal_id = $2 AND user_id IS NOT NULL
RETURNING id, portal_id, request_token, auth_token, user_id, created_at`
	var t model.Token
	err := s.pool.QueryRow(ctx, q, authToken, portalID).
		Scan(&t.ID, &t.PortalID, &t.RequestToken, &t.AuthToken, &t.UserID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID string) error {
	const q = `DELETE FROM token WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, tokenID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTokensOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	const q = `DELETE FROM token WHERE created_at < $1`
	tag, err := s.pool.Exec(ctx, q, cutoff)
	return int(tag.RowsAffected()), err
}

func (s *Store) RequestTokenExists(ctx context.Context, requestToken string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM token WHERE request_token = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, q, requestToken).Scan(&exists)
	return exists, err
}

func (s *Store) AuthTokenExists(ctx context.Context, authToken string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM token WHERE auth_token = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, q, authToken).Scan(&exists)
	return exists, err
}
