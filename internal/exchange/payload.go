package exchange

import (
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// UserPayload es la identidad del usuario tal como viaja a los portales en
// verify y en las respuestas del variante JWT. Nunca incluye credenciales.
type UserPayload struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func buildUserPayload(u *model.User) UserPayload {
	return UserPayload{
		ID:          u.ID,
		Username:    u.Username,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}
