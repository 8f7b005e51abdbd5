// Package keystore resuelve la identidad criptográfica de los portales:
// lookup por sso_key (cacheado), alta con generación de claves únicas y
// rotación atómica del par key/secret.
package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropDatabas3/portalgate/internal/cache"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/security/keygen"
	"github.com/google/uuid"
)

const cachePrefix = "portal:key:"

// KeyStore expone los portales registrados.
type KeyStore struct {
	portals  repository.PortalRepository
	cache    cache.Client
	cacheTTL time.Duration
}

// New crea un KeyStore. cacheClient puede ser nil (sin cache).
func New(portals repository.PortalRepository, cacheClient cache.Client, cacheTTL time.Duration) *KeyStore {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &KeyStore{portals: portals, cache: cacheClient, cacheTTL: cacheTTL}
}

// LookupByKey busca un portal por su sso_key.
// Retorna repository.ErrNotFound si la key no corresponde a ningún portal.
func (k *KeyStore) LookupByKey(ctx context.Context, ssoKey string) (*model.Portal, error) {
	if k.cache != nil {
		if b, err := k.cache.Get(ctx, cachePrefix+ssoKey); err == nil {
			var p model.Portal
			if json.Unmarshal(b, &p) == nil {
				return &p, nil
			}
		}
	}

	p, err := k.portals.GetByKey(ctx, ssoKey)
	if err != nil {
		return nil, err
	}

	if k.cache != nil {
		if b, err := json.Marshal(p); err == nil {
			_ = k.cache.Set(ctx, cachePrefix+ssoKey, b, k.cacheTTL)
		}
	}
	return p, nil
}

// SecretForKey resuelve el sso_secret del portal identificado por iss.
// Cumple la firma de envelope.SecretResolver.
func (k *KeyStore) SecretForKey(ctx context.Context, iss string) (string, error) {
	p, err := k.LookupByKey(ctx, iss)
	if err != nil {
		return "", err
	}
	return p.SSOSecret, nil
}

// CreateInput contiene los datos administrativos de un portal nuevo.
type CreateInput struct {
	Name             string
	RedirectURL      string
	VisitURL         string
	AllowedDomain    string
	AllowMigrateUser bool
}

// Create registra un portal generando un par sso_key/sso_secret único.
func (k *KeyStore) Create(ctx context.Context, in CreateInput) (*model.Portal, error) {
	key, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, k.portals.KeyExists)
	if err != nil {
		return nil, fmt.Errorf("keystore: generate sso_key: %w", err)
	}
	secret, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, k.portals.SecretExists)
	if err != nil {
		return nil, fmt.Errorf("keystore: generate sso_secret: %w", err)
	}

	p := &model.Portal{
		ID:               uuid.NewString(),
		Name:             in.Name,
		SSOKey:           key,
		SSOSecret:        secret,
		RedirectURL:      in.RedirectURL,
		VisitURL:         in.VisitURL,
		AllowedDomain:    in.AllowedDomain,
		AllowMigrateUser: in.AllowMigrateUser,
		CreatedAt:        time.Now().UTC(),
	}
	if err := k.portals.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Rotate reemplaza sso_key y sso_secret del portal en una sola operación e
// invalida la entrada de cache de la key vieja. Los envelopes en vuelo
// firmados con el secret anterior dejan de verificar: es el comportamiento
// esperado de una rotación, no un bug.
func (k *KeyStore) Rotate(ctx context.Context, portalID string) (*model.Portal, error) {
	p, err := k.portals.GetByID(ctx, portalID)
	if err != nil {
		return nil, err
	}
	oldKey := p.SSOKey

	newKey, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, k.portals.KeyExists)
	if err != nil {
		return nil, fmt.Errorf("keystore: rotate sso_key: %w", err)
	}
	newSecret, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, k.portals.SecretExists)
	if err != nil {
		return nil, fmt.Errorf("keystore: rotate sso_secret: %w", err)
	}

	if err := k.portals.UpdateKeys(ctx, portalID, newKey, newSecret); err != nil {
		return nil, err
	}
	if k.cache != nil {
		_ = k.cache.Delete(ctx, cachePrefix+oldKey)
	}

	logger.From(ctx).Info("portal keys rotated",
		logger.Component("keystore"),
		logger.PortalID(portalID),
	)

	p.SSOKey = newKey
	p.SSOSecret = newSecret
	return p, nil
}
