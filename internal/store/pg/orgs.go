package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateOrganisation(ctx context.Context, o *model.Organisation) error {
	const q = `INSERT INTO organisation (id, name, unique_id) VALUES ($1, $2, $3)`
	_, err := s.pool.Exec(ctx, q, o.ID, o.Name, o.UniqueID)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (s *Store) GetOrganisationByName(ctx context.Context, name string) (*model.Organisation, error) {
	const q = `SELECT id, name, unique_id FROM organisation WHERE name = $1 LIMIT 1`
	var o model.Organisation
	err := s.pool.QueryRow(ctx, q, name).Scan(&o.ID, &o.Name, &o.UniqueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (s *Store) ListOrganisations(ctx context.Context) ([]*model.Organisation, error) {
	const q = `SELECT id, name, unique_id FROM organisation ORDER BY name`
	rows, err := s.pool.Query(ctx, q)
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

func (s *Store) OrganisationsByID(ctx context.Context, ids []string) (map[string]*model.Organisation, error) {
	out := make(map[string]*model.Organisation, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `SELECT id, name, unique_id FROM organisation WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var o model.Organisation
		if err := rows.Scan(&o.ID, &o.Name, &o.UniqueID); err != nil {
			return nil, err
		}
		out[o.ID] = &o
	}
	return out, rows.Err()
}

func (s *Store) CreateRole(ctx context.Context, r *model.Role) error {
	const q = `
INSERT INTO role (id, portal_id, unique_id, code, name, external_description, internal_description)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.pool.Exec(ctx, q, r.ID, r.PortalID, r.UniqueID, r.Code, r.Name,
		r.ExternalDescription, r.InternalDescription)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

const roleCols = `id, portal_id, unique_id, code, name, external_description, internal_description`

func (s *Store) RolesByPortal(ctx context.Context, portalID string) ([]*model.Role, error) {
	const q = `SELECT ` + roleCols + ` FROM role WHERE portal_id = $1 ORDER BY name`
	rows, err := s.pool.Query(ctx, q, portalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Role
	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.PortalID, &r.UniqueID, &r.Code, &r.Name,
			&r.ExternalDescription, &r.InternalDescription); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *Store) RolesByID(ctx context.Context, ids []string) (map[string]*model.Role, error) {
	out := make(map[string]*model.Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `SELECT ` + roleCols + ` FROM role WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var r model.Role
		if err := rows.Scan(&r.ID, &r.PortalID, &r.UniqueID, &r.Code, &r.Name,
			&r.ExternalDescription, &r.InternalDescription); err != nil {
			return nil, err
		}
		out[r.ID] = &r
	}
	return out, rows.Err()
}

func (s *Store) AddRoleInheritance(ctx context.Context, roleID, baseRoleID string) error {
	const q = `
INSERT INTO role_inheritance (role_id, base_role_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`
	_, err := s.pool.Exec(ctx, q, roleID, baseRoleID)
	return err
}

func (s *Store) RoleInheritance(ctx context.Context) (map[string][]string, error) {
	const q = `SELECT role_id, base_role_id FROM role_inheritance`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var roleID, baseID string
		if err := rows.Scan(&roleID, &baseID); err != nil {
			return nil, err
		}
		out[roleID] = append(out[roleID], baseID)
	}
	return out, rows.Err()
}

func (s *Store) CreateOrganisationRole(ctx context.Context, or *model.OrganisationRole) error {
	const q = `
INSERT INTO organisation_role (id, organisation_id, role_id, for_all_users)
VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, q, or.ID, or.OrganisationID, or.RoleID, or.ForAllUsers)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (s *Store) OrganisationRolesFor(ctx context.Context, organisationIDs []string) ([]*model.OrganisationRole, error) {
	if len(organisationIDs) == 0 {
		return nil, nil
	}
	const q = `
SELECT id, organisation_id, role_id, for_all_users
FROM organisation_role
WHERE organisation_id = ANY($1)
ORDER BY id`
	rows, err := s.pool.Query(ctx, q, organisationIDs)
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
