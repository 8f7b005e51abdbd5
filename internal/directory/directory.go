// Package directory define el directorio de usuarios que la autoridad
// consume. La autenticación de credenciales está delegada acá: el core
// nunca ve passwords ni hashes.
//
// La invariante central es que crear una cuenta crea exactamente un perfil
// asociado en la misma transacción.
package directory

import (
	"context"
	"errors"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

var (
	// ErrInvalidCredentials indica username o password incorrectos. No se
	// distingue cuál de los dos falló.
	ErrInvalidCredentials = errors.New("directory: invalid credentials")

	// ErrInactive indica que la cuenta existe pero está desactivada.
	ErrInactive = errors.New("directory: account inactive")
)

// CreateUserInput contiene los datos para crear una cuenta.
type CreateUserInput struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string

	// Active arranca la cuenta activa. Las cuentas creadas por invitación
	// arrancan inactivas hasta completar la activación.
	Active bool
}

// Directory es el contrato del directorio de usuarios.
type Directory interface {
	// GetByID busca una cuenta por ID.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByUsername busca por username, case-insensitive.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByEmail busca por email, case-insensitive.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Authenticate verifica credenciales. Retorna ErrInvalidCredentials si
	// no matchean y ErrInactive si la cuenta está desactivada.
	Authenticate(ctx context.Context, username, password string) (*model.User, error)

	// CreateUser crea la cuenta y su perfil en la misma transacción.
	CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error)

	// UpdateUser persiste los campos editables de la cuenta.
	UpdateUser(ctx context.Context, u *model.User) error

	// SetActive activa o desactiva la cuenta.
	SetActive(ctx context.Context, userID string, active bool) error

	// SetPassword reemplaza la credencial de la cuenta.
	SetPassword(ctx context.Context, userID, password string) error
}
