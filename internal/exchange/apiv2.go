package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/envelope"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/roles"
)

// Variante JWT del handshake. Los portales de segunda generación no pasan
// por el ledger: firman un JWT con su propio secreto (iss = sso_key) y la
// autoridad responde con otro JWT firmado con el mismo secreto. La
// resolución del secreto vía iss ocurre antes de verificar la firma; un
// emisor desconocido se reporta igual que una firma inválida.

// LoginTicket es un intento de login v2 decodificado del JWT del portal.
type LoginTicket struct {
	Portal *model.Portal

	// SuccessURL es el endpoint del portal al que vuelve el usuario
	// autenticado, con el JWT de respuesta como query param.
	SuccessURL string

	// UnauthenticatedURL es el endpoint de "no logueado" del portal.
	// Solo está presente cuando ForceSSOLogin es false.
	UnauthenticatedURL string

	// ForceSSOLogin indica si un usuario sin sesión debe ver el form de
	// login (true) o ser rebotado a UnauthenticatedURL (false). Es una
	// política del portal llamador, no un estado del ledger.
	ForceSSOLogin bool
}

// StartLogin abre el JWT con el que un portal inicia el flujo v2.
func (p *Protocol) StartLogin(ctx context.Context, message string) (*LoginTicket, error) {
	claims, portal, err := p.openV2(ctx, message, "login_success_url")
	if err != nil {
		return nil, err
	}

	ticket := &LoginTicket{
		Portal:        portal,
		SuccessURL:    claims.String("login_success_url"),
		ForceSSOLogin: true,
	}
	if v, ok := claims["force_sso_login"].(bool); ok && !v {
		ticket.ForceSSOLogin = false
		ticket.UnauthenticatedURL = claims.String("unauthenticated_is_ok_url")
		if ticket.UnauthenticatedURL == "" {
			return nil, ErrMalformedClaims
		}
	}
	return ticket, nil
}

// CompleteLogin emite el JWT de respuesta para un login v2 exitoso:
// identidad del usuario más sus permisos en el portal, firmado con el
// secreto del portal y con expiración absoluta.
func (p *Protocol) CompleteLogin(ctx context.Context, ticket *LoginTicket, user *model.User) (string, error) {
	ok, err := p.HasAccess(ctx, user, ticket.Portal)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrAccessDenied
	}

	grants, err := p.resolver.Resolve(ctx, user.ID, ticket.Portal.ID)
	if err != nil {
		return "", err
	}
	userJSON, err := json.Marshal(buildUserPayload(user))
	if err != nil {
		return "", fmt.Errorf("exchange: marshal user: %w", err)
	}
	rolesJSON, err := json.Marshal(roles.BuildPayload(grants))
	if err != nil {
		return "", fmt.Errorf("exchange: marshal roles: %w", err)
	}

	out, err := envelope.SignClaims(ticket.Portal.SSOSecret, envelope.Claims{
		"iss":   ticket.Portal.SSOKey,
		"user":  string(userJSON),
		"roles": string(rolesJSON),
	}, p.jwtTTL)
	if err != nil {
		return "", fmt.Errorf("exchange: sign login response: %w", err)
	}
	logger.From(ctx).Info("v2 login completed",
		logger.Component("exchange"), logger.PortalKey(ticket.Portal.SSOKey), logger.UserID(user.ID))
	return out, nil
}

// CheckCredentials valida usuario y contraseña en nombre de un portal v2.
// El JWT entrante debe traer los claims username y password; credenciales
// inválidas o cuenta inactiva se reportan como ErrAccessDenied sin
// distinguir la causa.
func (p *Protocol) CheckCredentials(ctx context.Context, message string) (*VerifyResult, error) {
	claims, portal, err := p.openV2(ctx, message, "username", "password")
	if err != nil {
		return nil, err
	}

	user, err := p.dir.Authenticate(ctx, claims.String("username"), claims.String("password"))
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) || errors.Is(err, directory.ErrInactive) {
			logger.From(ctx).Info("credential check failed",
				logger.Component("exchange"), logger.PortalKey(portal.SSOKey),
				logger.Username(claims.String("username")))
			return nil, ErrAccessDenied
		}
		return nil, err
	}

	ok, err := p.HasAccess(ctx, user, portal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	grants, err := p.resolver.Resolve(ctx, user.ID, portal.ID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		User:  buildUserPayload(user),
		Roles: roles.BuildPayload(grants),
	}, nil
}

// PortalFromMessage autentica un mensaje v2 sin exigir claims más allá de
// iss. Sirve para endpoints de solo lectura donde el JWT firmado es la
// credencial del portal.
func (p *Protocol) PortalFromMessage(ctx context.Context, message string) (*model.Portal, error) {
	_, portal, err := p.openV2(ctx, message)
	if err != nil {
		return nil, err
	}
	return portal, nil
}

// openV2 abre un JWT entrante resolviendo el secreto por iss y exigiendo
// los claims dados.
func (p *Protocol) openV2(ctx context.Context, message string, require ...string) (envelope.Claims, *model.Portal, error) {
	claims, err := envelope.OpenClaims(ctx, message, p.keys.SecretForKey, envelope.ClaimsOpts{
		Require: require,
	})
	if err != nil {
		switch {
		case errors.Is(err, envelope.ErrExpired):
			return nil, nil, ErrEnvelopeExpired
		case errors.Is(err, envelope.ErrMalformedClaims):
			return nil, nil, ErrMalformedClaims
		default:
			return nil, nil, ErrBadSignature
		}
	}
	portal, err := p.lookupPortal(ctx, claims.Issuer())
	if err != nil {
		return nil, nil, err
	}
	return claims, portal, nil
}
