package envelope

import (
	"context"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrMalformedClaims indica que faltan claims que el endpoint exige.
var ErrMalformedClaims = errors.New("envelope: malformed claims")

// Claims es el payload de un envelope v2.
type Claims map[string]any

// String retorna el claim como string ("" si falta o no es string).
func (c Claims) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// Issuer retorna el claim iss (la sso_key del portal emisor).
func (c Claims) Issuer() string { return c.String("iss") }

// SecretResolver resuelve el sso_secret del portal identificado por iss.
// Debe retornar error si el issuer no existe; Open lo reporta como
// ErrBadSignature para no filtrar qué keys son válidas.
type SecretResolver func(ctx context.Context, iss string) (string, error)

// ClaimsOpts ajusta la validación de OpenClaims por endpoint.
type ClaimsOpts struct {
	// Audience exige que el claim aud contenga este valor. Vacío = no se
	// valida aud (endpoints que no lo requieren deben tolerar su ausencia).
	Audience string

	// Require lista claims de aplicación que deben estar presentes y no
	// vacíos (ej: "username" en check_credentials). Su ausencia es
	// ErrMalformedClaims.
	Require []string
}

// SignClaims firma claims con HS256 usando el secret del portal.
// Si ttl > 0 agrega exp; si ttl == 0 el token no expira por sí mismo.
func SignClaims(secret string, claims Claims, ttl time.Duration) (string, error) {
	mc := jwtv5.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	if ttl > 0 {
		mc["exp"] = nowFunc().UTC().Add(ttl).Unix()
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, mc)
	return tok.SignedString([]byte(secret))
}

// OpenClaims verifica un envelope v2. Extrae iss sin verificar, resuelve el
// secret del portal y recién entonces valida la firma HS256. exp y aud son
// opcionales: se validan solo si están presentes (exp) o si el endpoint los
// exige (opts.Audience, opts.Require).
func OpenClaims(ctx context.Context, token string, resolve SecretResolver, opts ClaimsOpts) (Claims, error) {
	iss, err := peekIssuer(token)
	if err != nil {
		return nil, err
	}
	if iss == "" {
		return nil, ErrMalformedClaims
	}

	secret, err := resolve(ctx, iss)
	if err != nil {
		// Issuer desconocido y firma inválida son indistinguibles afuera.
		return nil, ErrBadSignature
	}

	parseOpts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{"HS256"}),
	}
	if opts.Audience != "" {
		parseOpts = append(parseOpts, jwtv5.WithAudience(opts.Audience))
	}

	parsed, err := jwtv5.Parse(token, func(t *jwtv5.Token) (any, error) {
		return []byte(secret), nil
	}, parseOpts...)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrBadSignature
	}

	mc, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrMalformedClaims
	}

	claims := Claims{}
	for k, v := range mc {
		claims[k] = v
	}
	for _, name := range opts.Require {
		if claims.String(name) == "" {
			return nil, ErrMalformedClaims
		}
	}
	return claims, nil
}

// peekIssuer extrae iss sin validar la firma. El secret a usar depende del
// issuer, así que no hay otra forma de arrancar.
func peekIssuer(token string) (string, error) {
	parser := jwtv5.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwtv5.MapClaims{})
	if err != nil {
		return "", ErrMalformed
	}
	mc, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return "", ErrMalformed
	}
	iss, _ := mc["iss"].(string)
	return iss, nil
}
