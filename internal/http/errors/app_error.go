// Package errors define el formato estándar de errores HTTP de la
// autoridad: código estable, mensaje para el cliente y status asociado.
package errors

import (
	"fmt"
	"net/http"
)

// AppError es el error que viaja al cliente. HTTPStatus y Err no se
// serializan; Err queda para los logs.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implementa la interfaz error.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail devuelve una COPIA con detalle adicional. Las variables base
// son compartidas y no deben mutarse.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con el error original adjunto.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// ---------------------------------------------------------------------------------
// 400 Bad Request
// ---------------------------------------------------------------------------------

var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos requeridos en la solicitud.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBadSignature = &AppError{
		Code:       "BAD_SIGNATURE",
		Message:    "La firma del sobre no verifica.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrEnvelopeExpired = &AppError{
		Code:       "ENVELOPE_EXPIRED",
		Message:    "El sobre es válido pero expiró.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "El token SSO expiró; el portal debe reiniciar el handshake.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidToken = &AppError{
		Code:       "INVALID_TOKEN",
		Message:    "El token SSO no existe o no está en el estado esperado.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMalformedClaims = &AppError{
		Code:       "MALFORMED_CLAIMS",
		Message:    "Al mensaje firmado le faltan claims requeridos.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidRedirect = &AppError{
		Code:       "INVALID_REDIRECT",
		Message:    "El destino de redirección no está permitido para el portal.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// ---------------------------------------------------------------------------------
// 401 / 403
// ---------------------------------------------------------------------------------

var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "No autorizado. Se requiere autenticación.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Las credenciales proporcionadas son inválidas.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrAccessDenied = &AppError{
		Code:       "ACCESS_DENIED",
		Message:    "El usuario no tiene acceso a este portal.",
		HTTPStatus: http.StatusForbidden,
	}
)

// ---------------------------------------------------------------------------------
// 404 / 405 / 409
// ---------------------------------------------------------------------------------

var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrUnknownPortal = &AppError{
		Code:       "UNKNOWN_PORTAL",
		Message:    "La sso_key no corresponde a ningún portal registrado.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrInvalidActivationKey = &AppError{
		Code:       "INVALID_ACTIVATION_KEY",
		Message:    "La clave de activación es desconocida.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido para este recurso.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "El recurso entra en conflicto con el estado actual.",
		HTTPStatus: http.StatusConflict,
	}

	ErrAlreadyActivated = &AppError{
		Code:       "ALREADY_ACTIVATED",
		Message:    "La invitación ya fue activada.",
		HTTPStatus: http.StatusConflict,
	}

	ErrActivationKeyExpired = &AppError{
		Code:       "ACTIVATION_KEY_EXPIRED",
		Message:    "La clave de activación venció. Pedí que te reenvíen la invitación.",
		HTTPStatus: http.StatusGone,
	}
)

// ---------------------------------------------------------------------------------
// 429 / 500+
// ---------------------------------------------------------------------------------

var (
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Ha excedido el límite de solicitudes. Intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error interno en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "El servicio no está disponible temporalmente.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
