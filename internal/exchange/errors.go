package exchange

import "errors"

// Taxonomía de errores del handshake. Cada uno es terminal para el paso en
// curso y llega al portal como un resultado distinguible; ninguno se
// reintenta automáticamente.
var (
	// ErrUnknownPortal indica una sso_key que no resuelve a ningún portal.
	ErrUnknownPortal = errors.New("exchange: unknown portal")

	// ErrBadSignature indica un sobre cuya firma no verifica. También
	// cubre sobres malformados y emisores desconocidos del variante JWT:
	// hacia afuera nunca se distingue "clave inválida" de "firma inválida".
	ErrBadSignature = errors.New("exchange: bad signature")

	// ErrEnvelopeExpired indica un sobre válido pero fuera de su TTL.
	ErrEnvelopeExpired = errors.New("exchange: envelope expired")

	// ErrTokenExpired indica un token del ledger fuera del timeout. El
	// token fue destruido: el portal debe reiniciar el handshake.
	ErrTokenExpired = errors.New("exchange: token expired")

	// ErrInvalidToken indica un token inexistente o en el estado
	// equivocado para la operación.
	ErrInvalidToken = errors.New("exchange: invalid token")

	// ErrAccessDenied indica un usuario autenticado sin acceso al portal.
	ErrAccessDenied = errors.New("exchange: access denied")

	// ErrMalformedClaims indica un JWT bien firmado al que le falta un
	// claim que el endpoint exige.
	ErrMalformedClaims = errors.New("exchange: malformed claims")
)
