// Package activation contiene el controller de activación de
// invitaciones.
package activation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/portalgate/internal/http/dto/activation"
	httperrors "github.com/dropDatabas3/portalgate/internal/http/errors"
	"github.com/dropDatabas3/portalgate/internal/http/helpers"
	svc "github.com/dropDatabas3/portalgate/internal/http/services/activation"
	"github.com/dropDatabas3/portalgate/internal/invite"
)

type Controller struct {
	service *svc.Service
}

func NewController(service *svc.Service) *Controller {
	return &Controller{service: service}
}

// Activate maneja POST /activate/{key}
func (c *Controller) Activate(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if key == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("activation key is required"))
		return
	}

	var req dto.ActivateRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("username and password are required"))
		return
	}

	user, err := c.service.Activate(r.Context(), invite.ActivateInput{
		ActivationKey: key,
		Username:      req.Username,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
	})
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.ActivateResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}
