package errors

import (
	"errors"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/exchange"
	"github.com/dropDatabas3/portalgate/internal/invite"
)

// FromError normaliza cualquier error a *AppError. Los sentinels de las
// capas de dominio se mapean a su código HTTP; lo desconocido es un 500
// genérico que conserva la causa para los logs.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, exchange.ErrUnknownPortal):
		return ErrUnknownPortal.WithCause(err)
	case errors.Is(err, exchange.ErrBadSignature):
		return ErrBadSignature.WithCause(err)
	case errors.Is(err, exchange.ErrEnvelopeExpired):
		return ErrEnvelopeExpired.WithCause(err)
	case errors.Is(err, exchange.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	case errors.Is(err, exchange.ErrInvalidToken):
		return ErrInvalidToken.WithCause(err)
	case errors.Is(err, exchange.ErrAccessDenied):
		return ErrAccessDenied.WithCause(err)
	case errors.Is(err, exchange.ErrMalformedClaims):
		return ErrMalformedClaims.WithCause(err)

	case errors.Is(err, directory.ErrInvalidCredentials),
		errors.Is(err, directory.ErrInactive):
		// Hacia afuera nunca se distingue credencial mala de cuenta
		// desactivada.
		return ErrInvalidCredentials.WithCause(err)

	case errors.Is(err, invite.ErrInvalidKey):
		return ErrInvalidActivationKey.WithCause(err)
	case errors.Is(err, invite.ErrAlreadyActivated):
		return ErrAlreadyActivated.WithCause(err)
	case errors.Is(err, invite.ErrKeyExpired):
		return ErrActivationKeyExpired.WithCause(err)

	case repository.IsNotFound(err):
		return ErrNotFound.WithCause(err)
	case repository.IsConflict(err):
		return ErrConflict.WithCause(err)
	}

	return ErrInternalServerError.WithCause(err)
}
