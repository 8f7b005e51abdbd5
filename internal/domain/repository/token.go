package repository

import (
	"context"
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
)

// TokenRepository define las operaciones de persistencia del ledger de
// tokens. Las garantías de unicidad y de consumo único viven acá: la capa
// superior (ledger) implementa el retry de colisiones y los timeouts.
type TokenRepository interface {
	// Create persiste un token nuevo (sin usuario).
	// Retorna ErrConflict si request_token o auth_token colisionan con un
	// token existente.
	Create(ctx context.Context, t *model.Token) error

	// GetUnbound busca un token por request_token y portal, solo si aún no
	// tiene usuario asociado. Retorna ErrNotFound si no existe o ya está
	// asociado.
	GetUnbound(ctx context.Context, requestToken, portalID string) (*model.Token, error)

	// Bind asocia el usuario al token, solo si el token aún no tiene
	// usuario. Retorna ErrAlreadyBound si ya lo tiene y ErrNotFound si el
	// token no existe.
	Bind(ctx context.Context, tokenID, userID string) error

	// ConsumeBound busca un token por auth_token y portal con usuario
	// asociado, y lo elimina en la misma operación. Bajo concurrencia a lo
	// sumo un caller obtiene el token; el resto recibe ErrNotFound.
	ConsumeBound(ctx context.Context, authToken, portalID string) (*model.Token, error)

	// Delete elimina un token por ID. No falla si ya no existe.
	Delete(ctx context.Context, tokenID string) error

	// DeleteOlderThan elimina todos los tokens (asociados o no) creados
	// antes de cutoff. Retorna la cantidad eliminada.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// RequestTokenExists verifica si un request_token ya está en uso.
	RequestTokenExists(ctx context.Context, requestToken string) (bool, error)

	// AuthTokenExists verifica si un auth_token ya está en uso.
	AuthTokenExists(ctx context.Context, authToken string) (bool, error)
}
