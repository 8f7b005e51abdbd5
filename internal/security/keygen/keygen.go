// Package keygen genera claves aleatorias de alta entropía y garantiza su
// unicidad contra un predicado de existencia inyectado.
//
// Lo usan todas las entidades con claves únicas: portales (sso_key /
// sso_secret), tokens del ledger (request_token / auth_token) e
// invitaciones (activation_key).
package keygen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// alphabet tiene 64 símbolos, así el muestreo por byte no introduce sesgo.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

// DefaultKeyLength es el largo estándar de las claves generadas.
const DefaultKeyLength = 64

// maxAttempts acota el retry de colisiones. Con claves de 64 chars sobre un
// alfabeto de 64 símbolos una colisión real es astronómicamente improbable:
// agotar los intentos indica un error de configuración, no mala suerte.
const maxAttempts = 10

// ErrKeyspaceExhausted indica colisiones persistentes al generar una clave
// única. Es fatal, no retryable.
var ErrKeyspaceExhausted = errors.New("keygen: persistent collisions generating unique key")

// ExistsFunc verifica si un candidato ya está en uso.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// SecretKey genera una clave aleatoria de n caracteres del alfabeto.
func SecretKey(n int) (string, error) {
	if n <= 0 {
		n = DefaultKeyLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("keygen: read random: %w", err)
	}
	var sb strings.Builder
	sb.Grow(n)
	for _, c := range b {
		sb.WriteByte(alphabet[int(c)&63])
	}
	return sb.String(), nil
}

// UniqueKey genera una clave que el predicado exists no conoce, con un loop
// generate-and-check acotado. Retorna ErrKeyspaceExhausted tras maxAttempts
// colisiones consecutivas.
func UniqueKey(ctx context.Context, n int, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		key, err := SecretKey(n)
		if err != nil {
			return "", err
		}
		inUse, err := exists(ctx, key)
		if err != nil {
			return "", err
		}
		if !inUse {
			return key, nil
		}
	}
	return "", ErrKeyspaceExhausted
}

// NewUniqueID genera un identificador externo estable (uuid4 en hex, 32
// chars), usado como unique_id de organisaciones y roles.
func NewUniqueID() string {
	u := uuid.New()
	return strings.ReplaceAll(u.String(), "-", "")
}
