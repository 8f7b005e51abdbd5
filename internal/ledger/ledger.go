// Package ledger administra el ciclo de vida de los tokens del handshake
// SSO: creación con claves únicas, asociación única a un usuario, consumo
// destructivo y barrido de expirados.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/security/keygen"
	"github.com/oklog/ulid/v2"
)

// DefaultTimeout es la vida máxima de un token del handshake.
const DefaultTimeout = 5 * time.Minute

// createAttempts acota el retry cuando la constraint de unicidad del store
// detecta una colisión que los checks previos no vieron (carrera entre dos
// creaciones concurrentes).
const createAttempts = 3

var (
	// ErrTokenExpired indica que el token superó el timeout. El token fue
	// eliminado: el portal debe arrancar el handshake de nuevo.
	ErrTokenExpired = errors.New("ledger: token expired")

	// ErrInvalidToken indica un token inexistente o en el estado
	// equivocado (no asociado para verify, ya asociado para authorize).
	ErrInvalidToken = errors.New("ledger: invalid token")
)

// Ledger es el registro de tokens vivos.
type Ledger struct {
	tokens  repository.TokenRepository
	timeout time.Duration

	// now permite congelar el reloj en tests.
	now func() time.Time
}

// New crea un ledger con el timeout dado (0 = DefaultTimeout).
func New(tokens repository.TokenRepository, timeout time.Duration) *Ledger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Ledger{tokens: tokens, timeout: timeout, now: time.Now}
}

// Timeout retorna la vida máxima configurada.
func (l *Ledger) Timeout() time.Duration { return l.timeout }

// CreateForPortal aloca un token sin usuario con request_token y auth_token
// únicos e independientes. Las colisiones se resuelven con el mismo loop
// generate-and-check que las claves de portal, más la constraint del store
// como última línea ante creaciones concurrentes.
func (l *Ledger) CreateForPortal(ctx context.Context, portal *model.Portal) (*model.Token, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		reqTok, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, l.tokens.RequestTokenExists)
		if err != nil {
			return nil, fmt.Errorf("ledger: generate request_token: %w", err)
		}
		authTok, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, l.tokens.AuthTokenExists)
		if err != nil {
			return nil, fmt.Errorf("ledger: generate auth_token: %w", err)
		}

		t := &model.Token{
			ID:           ulid.Make().String(),
			PortalID:     portal.ID,
			RequestToken: reqTok,
			AuthToken:    authTok,
			CreatedAt:    l.now().UTC(),
		}
		err = l.tokens.Create(ctx, t)
		if err == nil {
			return t, nil
		}
		if !repository.IsConflict(err) {
			return nil, err
		}
	}
	return nil, keygen.ErrKeyspaceExhausted
}

// LookupUnbound busca el token de un authorize en curso y aplica el
// timeout: un token sin usuario más viejo que el timeout se elimina y se
// reporta ErrTokenExpired (el mensaje al portal difiere del de un token
// inválido). Un token ya asociado no es un target válido de authorize.
func (l *Ledger) LookupUnbound(ctx context.Context, requestToken, portalID string) (*model.Token, error) {
	t, err := l.tokens.GetUnbound(ctx, requestToken, portalID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if t.Age(l.now().UTC()) > l.timeout {
		// Borrado activo: el próximo intento con el mismo request_token
		// recibe ErrInvalidToken, no ErrTokenExpired.
		if derr := l.tokens.Delete(ctx, t.ID); derr != nil {
			logger.From(ctx).Warn("delete of expired token failed",
				logger.Component("ledger"), logger.TokenID(t.ID), logger.Err(derr))
		}
		return nil, ErrTokenExpired
	}
	return t, nil
}

// Bind asocia el usuario autenticado al token, exactamente una vez. Un
// segundo Bind es una violación de protocolo: se loguea y se reporta como
// ErrInvalidToken, sin pisar la asociación original.
func (l *Ledger) Bind(ctx context.Context, t *model.Token, userID string) error {
	err := l.tokens.Bind(ctx, t.ID, userID)
	if err == nil {
		uid := userID
		t.UserID = &uid
		return nil
	}
	if errors.Is(err, repository.ErrAlreadyBound) {
		logger.From(ctx).Warn("bind called on already-bound token",
			logger.Component("ledger"), logger.TokenID(t.ID), logger.UserID(userID))
		return ErrInvalidToken
	}
	if repository.IsNotFound(err) {
		return ErrInvalidToken
	}
	return err
}

// Consume busca el token asociado por auth_token y lo destruye en la misma
// operación. Verify no es idempotente: el segundo Consume con el mismo
// auth_token siempre retorna ErrInvalidToken, también bajo carreras.
func (l *Ledger) Consume(ctx context.Context, authToken, portalID string) (*model.Token, error) {
	t, err := l.tokens.ConsumeBound(ctx, authToken, portalID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return t, nil
}

// SweepExpired elimina todos los tokens (asociados o no) creados antes de
// now - timeout. Lo invoca periódicamente el scheduler externo.
func (l *Ledger) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	n, err := l.tokens.DeleteOlderThan(ctx, now.UTC().Add(-l.timeout))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.From(ctx).Info("expired tokens swept",
			logger.Component("ledger"), logger.Count(n))
	}
	return n, nil
}
