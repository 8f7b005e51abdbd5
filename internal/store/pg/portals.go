package pg

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/jackc/pgx/v5"
)

const portalCols = `id, name, sso_key, sso_secret, redirect_url, visit_url, allowed_domain, allow_migrate_user, created_at`

func scanPortal(row pgx.Row) (*model.Portal, error) {
	var p model.Portal
	err := row.Scan(&p.ID, &p.Name, &p.SSOKey, &p.SSOSecret, &p.RedirectURL,
		&p.VisitURL, &p.AllowedDomain, &p.AllowMigrateUser, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePortal(ctx context.Context, p *model.Portal) error {
	const q = `
INSERT INTO portal (id, name, sso_key, sso_secret, redirect_url, visit_url, allowed_domain, allow_migrate_user)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at`
	err := s.pool.QueryRow(ctx, q, p.ID, p.Name, p.SSOKey, p.SSOSecret,
		p.RedirectURL, p.VisitURL, p.AllowedDomain, p.AllowMigrateUser).Scan(&p.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrConflict
	}
	return err
}

func (s *Store) GetPortalByKey(ctx context.Context, ssoKey string) (*model.Portal, error) {
	const q = `SELECT ` + portalCols + ` FROM portal WHERE sso_key = $1 LIMIT 1`
	return scanPortal(s.pool.QueryRow(ctx, q, ssoKey))
}

func (s *Store) GetPortalByID(ctx context.Context, id string) (*model.Portal, error) {
	const q = `SELECT ` + portalCols + ` FROM portal WHERE id = $1 LIMIT 1`
	return scanPortal(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) ListPortals(ctx context.Context) ([]*model.Portal, error) {
	const q = `SELECT ` + portalCols + ` FROM portal ORDER BY name`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Portal
	for rows.Next() {
		p, err := scanPortal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePortalKeys reemplaza ambas claves en una sola sentencia: la
// rotación es atómica por definición de UPDATE.
func (s *Store) UpdatePortalKeys(ctx context.Context, id, ssoKey, ssoSecret string) error {
	const q = `UPDATE portal SET sso_key = $2, sso_secret = $3 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id, ssoKey, ssoSecret)
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

func (s *Store) PortalKeyExists(ctx context.Context, ssoKey string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM portal WHERE sso_key = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, q, ssoKey).Scan(&exists)
	return exists, err
}

func (s *Store) PortalSecretExists(ctx context.Context, ssoSecret string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM portal WHERE sso_secret = $1)`
	var exists bool
	err := s.pool.QueryRow(ctx, q, ssoSecret).Scan(&exists)
	return exists, err
}
