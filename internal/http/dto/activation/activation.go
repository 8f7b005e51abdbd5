// Package activation contiene los DTOs de la activación de invitaciones.
package activation

// ActivateRequest completa una invitación. La activation key va en la URL.
type ActivateRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ActivateResponse confirma la cuenta creada.
type ActivateResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
