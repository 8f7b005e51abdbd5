package envelope

import (
	"context"
	"errors"
	"testing"
	"time"
)

func resolverFor(known map[string]string) SecretResolver {
	return func(ctx context.Context, iss string) (string, error) {
		s, ok := known[iss]
		if !ok {
			return "", errors.New("unknown issuer")
		}
		return s, nil
	}
}

func TestOpenClaims_RoundTripWithIssuerLookup(t *testing.T) {
	t.Parallel()

	resolve := resolverFor(map[string]string{"portal-key": secretA})

	tok, err := SignClaims(secretA, Claims{"iss": "portal-key", "username": "reinout"}, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	claims, err := OpenClaims(context.Background(), tok, resolve, ClaimsOpts{})
	if err != nil {
		t.Fatalf("OpenClaims err: %v", err)
	}
	if claims.Issuer() != "portal-key" || claims.String("username") != "reinout" {
		t.Fatalf("claims mismatch: %v", claims)
	}
}

func TestOpenClaims_UnknownIssuerLooksLikeBadSignature(t *testing.T) {
	t.Parallel()

	tok, err := SignClaims(secretA, Claims{"iss": "nadie"}, time.Minute)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	_, err = OpenClaims(context.Background(), tok, resolverFor(nil), ClaimsOpts{})
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature (sin oráculo de keys válidas)", err)
	}
}

func TestOpenClaims_WrongSecret(t *testing.T) {
	t.Parallel()

	// El resolver conoce el issuer pero con otro secret: firma inválida.
	resolve := resolverFor(map[string]string{"portal-key": secretB})

	tok, err := SignClaims(secretA, Claims{"iss": "portal-key"}, time.Minute)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	if _, err := OpenClaims(context.Background(), tok, resolve, ClaimsOpts{}); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestOpenClaims_MissingExpTolerated(t *testing.T) {
	t.Parallel()

	resolve := resolverFor(map[string]string{"portal-key": secretA})

	tok, err := SignClaims(secretA, Claims{"iss": "portal-key"}, 0) // sin exp
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	if _, err := OpenClaims(context.Background(), tok, resolve, ClaimsOpts{}); err != nil {
		t.Fatalf("claims sin exp deben tolerarse: %v", err)
	}
}

func TestOpenClaims_ExpiredWhenExpPresent(t *testing.T) {
	t.Parallel()

	// exp explícito en el pasado.
	expired := time.Now().UTC().Add(-10 * time.Minute).Unix()
	tok, err := SignClaims(secretA, Claims{"iss": "portal-key", "exp": expired}, 0)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	resolve := resolverFor(map[string]string{"portal-key": secretA})
	if _, err := OpenClaims(context.Background(), tok, resolve, ClaimsOpts{}); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestOpenClaims_RequiredClaimMissing(t *testing.T) {
	t.Parallel()

	resolve := resolverFor(map[string]string{"portal-key": secretA})

	tok, err := SignClaims(secretA, Claims{"iss": "portal-key"}, time.Minute)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	_, err = OpenClaims(context.Background(), tok, resolve, ClaimsOpts{Require: []string{"username"}})
	if !errors.Is(err, ErrMalformedClaims) {
		t.Fatalf("err = %v, want ErrMalformedClaims", err)
	}
}

func TestOpenClaims_AudienceEnforcedOnlyWhenRequired(t *testing.T) {
	t.Parallel()

	resolve := resolverFor(map[string]string{"portal-key": secretA})

	tok, err := SignClaims(secretA, Claims{"iss": "portal-key", "aud": "sso-server"}, time.Minute)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}

	if _, err := OpenClaims(context.Background(), tok, resolve, ClaimsOpts{Audience: "sso-server"}); err != nil {
		t.Fatalf("aud correcto err: %v", err)
	}
	if _, err := OpenClaims(context.Background(), tok, resolve, ClaimsOpts{Audience: "otro"}); err == nil {
		t.Fatal("aud incorrecto debería fallar")
	}

	// Token sin aud pasa cuando el endpoint no lo exige.
	tok2, err := SignClaims(secretA, Claims{"iss": "portal-key"}, time.Minute)
	if err != nil {
		t.Fatalf("SignClaims err: %v", err)
	}
	if _, err := OpenClaims(context.Background(), tok2, resolve, ClaimsOpts{}); err != nil {
		t.Fatalf("token sin aud err: %v", err)
	}
}
