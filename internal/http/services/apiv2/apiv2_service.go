// Package apiv2 contiene el service del flujo JWT de segunda generación.
package apiv2

import (
	"context"
	"errors"
	"sort"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/exchange"
	"github.com/dropDatabas3/portalgate/internal/http/services/common"
	"github.com/dropDatabas3/portalgate/internal/keystore"
	"github.com/dropDatabas3/portalgate/internal/metrics"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/roles"
)

type Service struct {
	protocol *exchange.Protocol
	keys     *keystore.KeyStore
	dir      directory.Directory
	orgs     repository.OrganisationRepository
}

func NewService(
	protocol *exchange.Protocol,
	keys *keystore.KeyStore,
	dir directory.Directory,
	orgs repository.OrganisationRepository,
) *Service {
	return &Service{protocol: protocol, keys: keys, dir: dir, orgs: orgs}
}

// Start abre el JWT con el que un portal inicia el flujo.
func (s *Service) Start(ctx context.Context, message string) (*exchange.LoginTicket, error) {
	return s.protocol.StartLogin(ctx, message)
}

// Authorize autentica las credenciales y emite el JWT de respuesta.
// Devuelve el JWT y la login_success_url del portal con el JWT adjunto.
func (s *Service) Authorize(ctx context.Context, message, username, password string) (string, string, error) {
	ticket, err := s.protocol.StartLogin(ctx, message)
	if err != nil {
		return "", "", err
	}

	user, err := s.dir.Authenticate(ctx, username, password)
	if err != nil {
		return "", "", err
	}

	out, err := s.protocol.CompleteLogin(ctx, ticket, user)
	if err != nil {
		if errors.Is(err, exchange.ErrAccessDenied) && metrics.AccessDeniedTotal != nil {
			metrics.AccessDeniedTotal.WithLabelValues(ticket.Portal.SSOKey).Inc()
		}
		return "", "", err
	}

	redirect := common.AppendQuery(ticket.SuccessURL, "message", out)

	logger.From(ctx).Info("api2 authorize completed",
		logger.Component("apiv2"), logger.PortalKey(ticket.Portal.SSOKey), logger.UserID(user.ID))
	return out, redirect, nil
}

// CheckCredentials valida credenciales firmadas en el message.
func (s *Service) CheckCredentials(ctx context.Context, message string) (*exchange.VerifyResult, error) {
	return s.protocol.CheckCredentials(ctx, message)
}

// Organisations lista todas las organisaciones registradas. El message
// firmado es la credencial: solo un portal conocido puede leer el listado.
func (s *Service) Organisations(ctx context.Context, message string) ([]roles.OrganisationPayload, error) {
	if _, err := s.protocol.PortalFromMessage(ctx, message); err != nil {
		return nil, err
	}

	all, err := s.orgs.ListOrganisations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]roles.OrganisationPayload, 0, len(all))
	for _, o := range all {
		out = append(out, roles.OrganisationPayload{Name: o.Name, UniqueID: o.UniqueID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LogoutTarget resuelve la URL de vuelta tras un logout v2.
func (s *Service) LogoutTarget(ctx context.Context, ssoKey, next string) (string, error) {
	portal, err := s.keys.LookupByKey(ctx, ssoKey)
	if err != nil {
		if repository.IsNotFound(err) {
			return "", exchange.ErrUnknownPortal
		}
		return "", err
	}
	return common.RedirectTarget(portal, next), nil
}
