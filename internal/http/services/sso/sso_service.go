// Package sso contiene el service del handshake v1: adapta el protocolo
// de intercambio a la superficie HTTP y registra las métricas del flujo.
package sso

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/exchange"
	"github.com/dropDatabas3/portalgate/internal/http/services/common"
	"github.com/dropDatabas3/portalgate/internal/keystore"
	"github.com/dropDatabas3/portalgate/internal/metrics"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
)

type Service struct {
	protocol *exchange.Protocol
	keys     *keystore.KeyStore
	dir      directory.Directory
}

func NewService(protocol *exchange.Protocol, keys *keystore.KeyStore, dir directory.Directory) *Service {
	return &Service{protocol: protocol, keys: keys, dir: dir}
}

// RequestToken emite el sobre inicial del handshake para el portal.
func (s *Service) RequestToken(ctx context.Context, ssoKey string) (string, error) {
	env, err := s.protocol.RequestToken(ctx, ssoKey)
	if err != nil {
		return "", err
	}
	if metrics.TokensIssuedTotal != nil {
		metrics.TokensIssuedTotal.WithLabelValues(ssoKey).Inc()
	}
	return env, nil
}

// Authorize autentica las credenciales y asocia el usuario al token en
// curso. Devuelve el sobre con el auth_token y la URL del portal a la que
// vuelve el usuario.
func (s *Service) Authorize(ctx context.Context, ssoKey, env, username, password string) (string, string, error) {
	user, err := s.dir.Authenticate(ctx, username, password)
	if err != nil {
		return "", "", err
	}

	out, err := s.protocol.Authorize(ctx, ssoKey, env, user)
	if err != nil {
		if errors.Is(err, exchange.ErrAccessDenied) && metrics.AccessDeniedTotal != nil {
			metrics.AccessDeniedTotal.WithLabelValues(ssoKey).Inc()
		}
		return "", "", err
	}

	portal, err := s.keys.LookupByKey(ctx, ssoKey)
	if err != nil {
		return "", "", err
	}
	redirect := common.AppendQuery(common.RedirectTarget(portal, ""), "envelope", out)

	logger.From(ctx).Info("sso authorize completed",
		logger.Component("sso"), logger.PortalKey(ssoKey), logger.UserID(user.ID))
	return out, redirect, nil
}

// Verify consume el auth_token y arma identidad más permisos.
func (s *Service) Verify(ctx context.Context, ssoKey, env string) (*exchange.VerifyResult, error) {
	res, err := s.protocol.Verify(ctx, ssoKey, env)
	if err != nil {
		return nil, err
	}
	if metrics.TokensVerifiedTotal != nil {
		metrics.TokensVerifiedTotal.WithLabelValues(ssoKey).Inc()
	}
	return res, nil
}

// LogoutTarget resuelve la URL de vuelta tras un logout. next se honra
// solo dentro de los dominios permitidos del portal.
func (s *Service) LogoutTarget(ctx context.Context, ssoKey, next string) (string, error) {
	portal, err := s.keys.LookupByKey(ctx, ssoKey)
	if err != nil {
		return "", mapLookupErr(err)
	}
	return common.RedirectTarget(portal, next), nil
}

// VisitTarget resuelve la URL pública del portal para la acción "visit".
func (s *Service) VisitTarget(ctx context.Context, ssoKey string) (string, error) {
	portal, err := s.keys.LookupByKey(ctx, ssoKey)
	if err != nil {
		return "", mapLookupErr(err)
	}
	if portal.VisitURL != "" {
		return portal.VisitURL, nil
	}
	return portal.RedirectURL, nil
}

// mapLookupErr traduce el sentinel del repositorio a la taxonomía del
// handshake: una sso_key inexistente es un portal desconocido.
func mapLookupErr(err error) error {
	if repository.IsNotFound(err) {
		return exchange.ErrUnknownPortal
	}
	return err
}
