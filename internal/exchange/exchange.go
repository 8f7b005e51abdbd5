// Package exchange orquesta el handshake SSO completo: request-token →
// authorize → auth-token → verify sobre sobres firmados v1, más el variante
// JWT para portales de segunda generación. Combina el KeyStore, el ledger
// de tokens, el directorio de usuarios y el resolver de roles.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/envelope"
	"github.com/dropDatabas3/portalgate/internal/keystore"
	"github.com/dropDatabas3/portalgate/internal/ledger"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/roles"
)

// DefaultJWTTTL es la vida de los JWT que la autoridad emite hacia los
// portales v2.
const DefaultJWTTTL = 5 * time.Minute

// Protocol implementa los pasos del handshake. Una instancia sirve a todos
// los portales; el aislamiento entre portales es criptográfico (cada sobre
// se firma con el secreto del portal que lo pidió).
type Protocol struct {
	keys     *keystore.KeyStore
	ledger   *ledger.Ledger
	resolver *roles.Resolver
	dir      directory.Directory
	profiles repository.ProfileRepository
	jwtTTL   time.Duration
}

func New(
	keys *keystore.KeyStore,
	lg *ledger.Ledger,
	resolver *roles.Resolver,
	dir directory.Directory,
	profiles repository.ProfileRepository,
	jwtTTL time.Duration,
) *Protocol {
	if jwtTTL <= 0 {
		jwtTTL = DefaultJWTTTL
	}
	return &Protocol{
		keys:     keys,
		ledger:   lg,
		resolver: resolver,
		dir:      dir,
		profiles: profiles,
		jwtTTL:   jwtTTL,
	}
}

// RequestToken arranca el handshake: aloca un token para el portal y
// retorna el sobre firmado que el portal usará para redirigir al usuario.
func (p *Protocol) RequestToken(ctx context.Context, portalKey string) (string, error) {
	portal, err := p.lookupPortal(ctx, portalKey)
	if err != nil {
		return "", err
	}
	t, err := p.ledger.CreateForPortal(ctx, portal)
	if err != nil {
		return "", fmt.Errorf("exchange: allocate token: %w", err)
	}
	env, err := envelope.Sign(portal.SSOSecret, map[string]string{
		"request_token": t.RequestToken,
	})
	if err != nil {
		return "", fmt.Errorf("exchange: sign request envelope: %w", err)
	}
	logger.From(ctx).Debug("request token issued",
		logger.Component("exchange"), logger.PortalKey(portal.SSOKey), logger.TokenID(t.ID))
	return env, nil
}

// Authorize asocia el usuario autenticado al token en curso y retorna el
// sobre con el auth_token. El usuario ya fue autenticado por la capa de
// sesión; acá solo se decide si tiene acceso al portal.
func (p *Protocol) Authorize(ctx context.Context, portalKey, env string, user *model.User) (string, error) {
	portal, err := p.lookupPortal(ctx, portalKey)
	if err != nil {
		return "", err
	}
	payload, err := p.openV1(portal, env)
	if err != nil {
		return "", err
	}
	reqTok := payload["request_token"]
	if reqTok == "" {
		return "", ErrBadSignature
	}

	t, err := p.ledger.LookupUnbound(ctx, reqTok, portal.ID)
	if err != nil {
		return "", mapLedgerErr(err)
	}

	ok, err := p.HasAccess(ctx, user, portal)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.From(ctx).Info("portal access denied",
			logger.Component("exchange"), logger.PortalKey(portal.SSOKey), logger.UserID(user.ID))
		return "", ErrAccessDenied
	}

	if err := p.ledger.Bind(ctx, t, user.ID); err != nil {
		return "", mapLedgerErr(err)
	}

	out, err := envelope.Sign(portal.SSOSecret, map[string]string{
		"request_token": t.RequestToken,
		"auth_token":    t.AuthToken,
	})
	if err != nil {
		return "", fmt.Errorf("exchange: sign auth envelope: %w", err)
	}
	return out, nil
}

// VerifyResult es la salida del paso final: identidad del usuario, sus
// permisos efectivos en el portal y el sobre firmado que transporta ambos.
type VerifyResult struct {
	User     UserPayload
	Roles    roles.Payload
	Envelope string
}

// Verify consume el auth_token y arma el paquete de identidad más roles.
// Es el único lugar donde se computan y transmiten roles; el token queda
// destruido, un segundo Verify con el mismo sobre falla con
// ErrInvalidToken.
func (p *Protocol) Verify(ctx context.Context, portalKey, env string) (*VerifyResult, error) {
	portal, err := p.lookupPortal(ctx, portalKey)
	if err != nil {
		return nil, err
	}
	payload, err := p.openV1(portal, env)
	if err != nil {
		return nil, err
	}
	authTok := payload["auth_token"]
	if authTok == "" {
		return nil, ErrBadSignature
	}

	t, err := p.ledger.Consume(ctx, authTok, portal.ID)
	if err != nil {
		return nil, mapLedgerErr(err)
	}

	user, err := p.dir.GetByID(ctx, *t.UserID)
	if err != nil {
		return nil, fmt.Errorf("exchange: load user: %w", err)
	}
	grants, err := p.resolver.Resolve(ctx, user.ID, portal.ID)
	if err != nil {
		return nil, err
	}

	res := &VerifyResult{
		User:  buildUserPayload(user),
		Roles: roles.BuildPayload(grants),
	}
	userJSON, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("exchange: marshal user: %w", err)
	}
	rolesJSON, err := json.Marshal(res.Roles)
	if err != nil {
		return nil, fmt.Errorf("exchange: marshal roles: %w", err)
	}
	res.Envelope, err = envelope.Sign(portal.SSOSecret, map[string]string{
		"user":  string(userJSON),
		"roles": string(rolesJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("exchange: sign verify envelope: %w", err)
	}

	logger.From(ctx).Info("auth token verified",
		logger.Component("exchange"), logger.PortalKey(portal.SSOKey),
		logger.UserID(user.ID), logger.TokenID(t.ID))
	return res, nil
}

// HasAccess decide si el usuario puede usar el portal: debe estar activo y
// estar vinculado al portal, salvo staff que accede a todos.
func (p *Protocol) HasAccess(ctx context.Context, user *model.User, portal *model.Portal) (bool, error) {
	if user == nil || !user.IsActive {
		return false, nil
	}
	if user.IsStaff {
		return true, nil
	}
	return p.profiles.HasPortal(ctx, user.ID, portal.ID)
}

func (p *Protocol) lookupPortal(ctx context.Context, portalKey string) (*model.Portal, error) {
	portal, err := p.keys.LookupByKey(ctx, portalKey)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnknownPortal
		}
		return nil, err
	}
	return portal, nil
}

// openV1 abre un sobre v1 con el secreto del portal. El TTL del sobre es
// el mismo timeout del ledger; un sobre malformado se reporta igual que
// una firma inválida.
func (p *Protocol) openV1(portal *model.Portal, env string) (map[string]string, error) {
	payload, err := envelope.Open(portal.SSOSecret, env, p.ledger.Timeout())
	switch {
	case err == nil:
		return payload, nil
	case errors.Is(err, envelope.ErrExpired):
		return nil, ErrEnvelopeExpired
	default:
		return nil, ErrBadSignature
	}
}

func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, ledger.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, ledger.ErrInvalidToken):
		return ErrInvalidToken
	default:
		return err
	}
}
