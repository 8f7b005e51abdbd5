// Package sso contiene los DTOs del handshake v1.
package sso

import (
	"github.com/dropDatabas3/portalgate/internal/exchange"
	"github.com/dropDatabas3/portalgate/internal/roles"
)

// EnvelopeResponse transporta un sobre firmado.
type EnvelopeResponse struct {
	Envelope string `json:"envelope"`
}

// AuthorizeRequest es el cuerpo de POST /sso/authorize. Las credenciales
// van acá porque la autoridad no mantiene sesión de navegador.
type AuthorizeRequest struct {
	SSOKey   string `json:"sso_key"`
	Envelope string `json:"envelope"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthorizeResponse devuelve el sobre con el auth_token y la URL del
// portal a la que debe volver el usuario.
type AuthorizeResponse struct {
	Envelope    string `json:"envelope"`
	RedirectURL string `json:"redirect_url"`
}

// VerifyResponse es el paquete final: identidad, permisos y el sobre
// firmado que transporta ambos.
type VerifyResponse struct {
	User     exchange.UserPayload `json:"user"`
	Roles    roles.Payload        `json:"roles"`
	Envelope string               `json:"envelope"`
}
