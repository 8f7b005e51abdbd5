package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

const invitationCols = `id, name, email, organisation, language, portal_ids, activation_key, activation_key_date, is_activated, activated_on, user_id, created_at`

func scanInvitation(row pgx.Row) (*model.Invitation, error) {
	var inv model.Invitation
	err := row.Scan(&inv.ID, &inv.Name, &inv.Email, &inv.Organisation, &inv.Language,
		&inv.PortalIDs, &inv.ActivationKey, &inv.ActivationKeyDate, &inv.IsActivated,
		&inv.ActivatedOn, &inv.UserID, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Store) CreateInvitation(ctx context.Context, inv *model.Invitation) error {
	const q = `
INSERT INTO invitation (id, name, email, organisation, language, portal_ids, activation_key, activation_key_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, inv.ID, inv.Name, inv.Email, inv.Organisation,
		inv.Language, inv.PortalIDs, inv.ActivationKey, inv.ActivationKeyDate).Scan(&inv.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (s *Store) GetInvitationByID(ctx context.Context, id string) (*model.Invitation, error) {
	const q = `SELECT ` + invitationCols + ` FROM invitation WHERE id = $1 LIMIT 1`
	return scanInvitation(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetInvitationByActivationKey(ctx context.Context, key string) (*model.Invitation, error) {
	const q = `SELECT ` + invitationCols + ` FROM invitation WHERE activation_key = $1 LIMIT 1`
	return scanInvitation(s.pool.QueryRow(ctx, q, key))
}

func (s *Store) UpdateInvitation(ctx context.Context, inv *model.Invitation) error {
	const q = `
UPDATE invitation
SET name = $2, email = $3, organisation = $4, language = $5, portal_ids = $6,
    activation_key = $7, activation_key_date = $8, is_activated = $9,
    activated_on = $10, user_id = $11
WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, inv.ID, inv.Name, inv.Email, inv.Organisation,
		inv.Language, inv.PortalIDs, inv.ActivationKey, inv.ActivationKeyDate,
		inv.IsActivated, inv.ActivatedOn, inv.UserID)
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

func (s *Store) ActivationKeyExists(ctx context.Context, key string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM invitation WHERE activation_key = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, q, key).Scan(&exists)
	return exists, err
}
