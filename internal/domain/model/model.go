// Package model define las entidades centrales de la autoridad SSO.
package model

import "time"

// Portal es una aplicación cliente registrada, identificada por un par
// sso_key/sso_secret único en todo el sistema.
//
// El sso_secret firma todos los envelopes intercambiados con ese portal y
// nunca debe aparecer en ningún payload observable externamente. Rotar las
// claves invalida todos los envelopes firmados con el secret anterior.
type Portal struct {
	ID        string
	Name      string
	SSOKey    string
	SSOSecret string

	// RedirectURL es la URL base del portal usada en las redirecciones SSO.
	RedirectURL string

	// VisitURL se usa en UI para referirse al portal.
	VisitURL string

	// AllowedDomain contiene sufijos de dominio permitidos para redirects
	// con parámetro `domain`/`next`, separados por espacios. Vacío = solo
	// RedirectURL.
	AllowedDomain string

	// AllowMigrateUser habilita la migración de usuarios desde el portal.
	AllowMigrateUser bool

	CreatedAt time.Time
}

// Token es el registro transitorio de un intento de login SSO.
//
// Ciclo de vida: creado sin usuario por RequestToken; Bind lo asocia a un
// usuario exactamente una vez; Verify lo consume (borrado) o el sweep lo
// elimina al expirar.
type Token struct {
	ID           string
	PortalID     string
	RequestToken string
	AuthToken    string
	UserID       *string
	CreatedAt    time.Time
}

// Bound indica si el token ya fue asociado a un usuario autenticado.
func (t *Token) Bound() bool {
	return t.UserID != nil && *t.UserID != ""
}

// Age retorna la antigüedad del token respecto de now.
func (t *Token) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// Organisation agrupa usuarios y roles. El unique_id es el identificador
// externo estable que ven los portales.
type Organisation struct {
	ID       string
	Name     string
	UniqueID string
}

// Role es un rol definido por un portal. Único por (portal, name).
type Role struct {
	ID                  string
	PortalID            string
	UniqueID            string
	Code                string
	Name                string
	ExternalDescription string
	InternalDescription string
}

// OrganisationRole asocia un rol a una organisación, único por par.
// Si ForAllUsers es true, todo perfil miembro de la organisación recibe el
// rol; si no, debe estar explícitamente asignado al perfil.
type OrganisationRole struct {
	ID             string
	OrganisationID string
	RoleID         string
	ForAllUsers    bool
}

// User es la identidad de cuenta tal como la expone el directorio de
// usuarios. El manejo de passwords queda en el directorio.
type User struct {
	ID          string
	Username    string
	FirstName   string
	LastName    string
	Email       string
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	CreatedAt   time.Time
}

// FullName retorna el nombre completo del usuario.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// UserProfile es el registro portador de permisos, uno-a-uno con la cuenta.
// Se crea en la misma transacción que la cuenta y no se borra por separado.
type UserProfile struct {
	UserID            string
	Title             string
	Street            string
	PostalCode        string
	Town              string
	PhoneNumber       string
	MobilePhoneNumber string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Invitation es una invitación administrativa: su activación crea la cuenta,
// el perfil, y vincula organisación y portales.
type Invitation struct {
	ID                string
	Name              string
	Email             string
	Organisation      string
	Language          string
	PortalIDs         []string
	ActivationKey     *string
	ActivationKeyDate *time.Time
	IsActivated       bool
	ActivatedOn       *time.Time
	UserID            *string
	CreatedAt         time.Time
}
