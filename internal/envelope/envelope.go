// Package envelope implementa los dos formatos de contenedor firmado que se
// intercambian con los portales.
//
// v1: blob firmado con timestamp, URL-safe, que transporta un mapa plano de
// strings. Formato: b64url(json) "." b64url(ts big-endian) "." b64url(hmac).
//
// v2: claims JWT HS256 donde `iss` identifica al portal por sso_key; el
// secret se resuelve vía un SecretResolver antes de verificar la firma.
//
// Cada portal firma con su propio sso_secret: ningún portal puede forjar ni
// leer envelopes de otro aunque todos pasen por la misma autoridad.
package envelope

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

var (
	// ErrBadSignature indica que la firma no verifica con el secret dado.
	// Se usa también para issuer desconocido en v2: el error externo no
	// debe revelar si la key era válida o la firma incorrecta.
	ErrBadSignature = errors.New("envelope: bad signature")

	// ErrExpired indica que el envelope superó su edad máxima.
	ErrExpired = errors.New("envelope: expired")

	// ErrMalformed indica un envelope estructuralmente inválido.
	ErrMalformed = errors.New("envelope: malformed")
)

const sep = "."

// nowFunc permite congelar el reloj en tests.
var nowFunc = time.Now

// Sign firma un payload con el secret y retorna el envelope v1.
// El instante de emisión queda embebido y lo valida Open.
func Sign(secret string, payload map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(nowFunc().UTC().Unix()))

	b64 := base64.RawURLEncoding
	signed := b64.EncodeToString(body) + sep + b64.EncodeToString(ts[:])
	mac := computeMAC(secret, signed)
	return signed + sep + b64.EncodeToString(mac), nil
}

// Open verifica firma y edad de un envelope v1 y retorna el payload.
// Falla con ErrBadSignature si la firma no corresponde al secret,
// ErrExpired si pasó más de maxAge desde la emisión, ErrMalformed si la
// estructura no se puede decodificar.
func Open(secret, env string, maxAge time.Duration) (map[string]string, error) {
	parts := strings.Split(env, sep)
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	b64 := base64.RawURLEncoding

	sig, err := b64.DecodeString(parts[2])
	if err != nil {
		return nil, ErrMalformed
	}
	// Firma primero: un envelope adulterado nunca reporta Expired.
	want := computeMAC(secret, parts[0]+sep+parts[1])
	if !hmac.Equal(sig, want) {
		return nil, ErrBadSignature
	}

	tsRaw, err := b64.DecodeString(parts[1])
	if err != nil || len(tsRaw) != 8 {
		return nil, ErrMalformed
	}
	issued := time.Unix(int64(binary.BigEndian.Uint64(tsRaw)), 0).UTC()
	if nowFunc().UTC().Sub(issued) > maxAge {
		return nil, ErrExpired
	}

	body, err := b64.DecodeString(parts[0])
	if err != nil {
		return nil, ErrMalformed
	}
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrMalformed
	}
	return payload, nil
}

func computeMAC(secret, signed string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signed))
	return h.Sum(nil)
}
