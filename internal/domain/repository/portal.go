package repository

import (
	"context"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// PortalRepository define operaciones sobre portales registrados.
type PortalRepository interface {
	// Create registra un nuevo portal.
	// Retorna ErrConflict si sso_key o sso_secret ya existen.
	Create(ctx context.Context, p *model.Portal) error

	// GetByKey busca un portal por su sso_key.
	// Retorna ErrNotFound si no existe.
	GetByKey(ctx context.Context, ssoKey string) (*model.Portal, error)

	// GetByID busca un portal por su ID.
	GetByID(ctx context.Context, id string) (*model.Portal, error)

	// List retorna todos los portales ordenados por nombre.
	List(ctx context.Context) ([]*model.Portal, error)

	// UpdateKeys reemplaza sso_key y sso_secret en una sola operación.
	// La rotación es atómica: nunca debe observarse un portal con la key
	// nueva y el secret viejo.
	UpdateKeys(ctx context.Context, id, ssoKey, ssoSecret string) error

	// KeyExists verifica si una sso_key ya está en uso.
	KeyExists(ctx context.Context, ssoKey string) (bool, error)

	// SecretExists verifica si un sso_secret ya está en uso.
	SecretExists(ctx context.Context, ssoSecret string) (bool, error)
}
