package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateProfile(ctx context.Context, p *model.UserProfile) error {
	const q = `
INSERT INTO user_profile (user_id, title, street, postal_code, town, phone_number, mobile_phone_number)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at`
	err := s.pool.QueryRow(ctx, q, p.UserID, p.Title, p.Street, p.PostalCode,
		p.Town, p.PhoneNumber, p.MobilePhoneNumber).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

const profileCols = `user_id, title, street, postal_code, town, phone_number, mobile_phone_number, created_at, updated_at`

func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	const q = `SELECT ` + profileCols + ` FROM user_profile WHERE user_id = $1 LIMIT 1`
	var p model.UserProfile
	err := s.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.Title, &p.Street,
		&p.PostalCode, &p.Town, &p.PhoneNumber, &p.MobilePhoneNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *model.UserProfile) error {
	const q = `
UPDATE user_profile
SET title = $2, street = $3, postal_code = $4, town = $5, phone_number = $6,
    mobile_phone_number = $7, updated_at = now()
WHERE user_id = $1`
	tag, err := s.pool.Exec(ctx, q, p.UserID, p.Title, p.Street, p.PostalCode,
		p.Town, p.PhoneNumber, p.MobilePhoneNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) OrganisationsOf(ctx context.Context, userID string) ([]*model.Organisation, error) {
	const q = `
SELECT o.id, o.name, o.unique_id
FROM organisation o
JOIN profile_organisation po ON po.organisation_id = o.id
WHERE po.user_id = $1
ORDER BY o.id`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Organisation
	for rows.Next() {
		var o model.Organisation
		if err := rows.Scan(&o.ID, &o.Name, &o.UniqueID); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *Store) ExplicitOrganisationRoles(ctx context.Context, userID string) ([]*model.OrganisationRole, error) {
	const q = `
SELECT r.id, r.organisation_id, r.role_id, r.for_all_users
FROM organisation_role r
JOIN profile_organisation_role pr ON pr.organisation_role_id = r.id
WHERE pr.user_id = $1
ORDER BY r.id`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.OrganisationRole
	for rows.Next() {
		var or model.OrganisationRole
		if err := rows.Scan(&or.ID, &or.OrganisationID, &or.RoleID, &or.ForAllUsers); err != nil {
			return nil, err
		}
		out = append(out, &or)
	}
	return out, rows.Err()
}

func (s *Store) HasPortal(ctx context.Context, userID, portalID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM profile_portal WHERE user_id = $1 AND portal_id = $2)`
	var ok bool
	err := s.pool.QueryRow(ctx, q, userID, portalID).Scan(&ok)
	return ok, err
}

func (s *Store) AttachPortal(ctx context.Context, userID, portalID string) error {
	const q = `
INSERT INTO profile_portal (user_id, portal_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := s.pool.Exec(ctx, q, userID, portalID)
	return err
}

func (s *Store) AttachOrganisation(ctx context.Context, userID, organisationID string) error {
	const q = `
INSERT INTO profile_organisation (user_id, organisation_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := s.pool.Exec(ctx, q, userID, organisationID)
	return err
}

func (s *Store) AttachOrganisationRole(ctx context.Context, userID, organisationRoleID string) error {
	const q = `
INSERT INTO profile_organisation_role (user_id, organisation_role_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := s.pool.Exec(ctx, q, userID, organisationRoleID)
	return err
}
