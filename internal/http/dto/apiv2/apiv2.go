// Package apiv2 contiene los DTOs del flujo JWT de segunda generación.
package apiv2

import (
	"github.com/dropDatabas3/portalgate/internal/exchange"
	"github.com/dropDatabas3/portalgate/internal/roles"
)

// StartResponse describe el intento de login decodificado del JWT del
// portal. No expone nada que el portal no haya firmado él mismo.
type StartResponse struct {
	LoginSuccessURL        string `json:"login_success_url"`
	ForceSSOLogin          bool   `json:"force_sso_login"`
	UnauthenticatedIsOkURL string `json:"unauthenticated_is_ok_url,omitempty"`
}

// AuthorizeRequest es el cuerpo de POST /api2/authorize.
type AuthorizeRequest struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthorizeResponse devuelve el JWT de respuesta y la URL de vuelta.
type AuthorizeResponse struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url"`
}

// CheckCredentialsRequest es el cuerpo de POST /api2/check_credentials.
// El message trae las credenciales como claims firmados por el portal.
type CheckCredentialsRequest struct {
	Message string `json:"message"`
}

// CheckCredentialsResponse devuelve identidad y permisos sin sobre: el
// canal ya está autenticado por la firma del message entrante.
type CheckCredentialsResponse struct {
	User  exchange.UserPayload `json:"user"`
	Roles roles.Payload        `json:"roles"`
}

// OrganisationsResponse lista todas las organisaciones registradas.
type OrganisationsResponse struct {
	Organisations []roles.OrganisationPayload `json:"organisations"`
}
