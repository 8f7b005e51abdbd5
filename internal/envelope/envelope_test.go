package envelope

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const (
	secretA = "secret-portal-a-0123456789abcdef0123456789abcdef0123456789abcdef"
	secretB = "secret-portal-b-0123456789abcdef0123456789abcdef0123456789abcdef"
)

func TestOpen_RoundTrip(t *testing.T) {
	payload := map[string]string{
		"request_token": "tok-123",
		"auth_token":    "tok-456",
	}

	env, err := Sign(secretA, payload)
	if err != nil {
		t.Fatalf("Sign err: %v", err)
	}

	got, err := Open(secretA, env, 5*time.Minute)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	if got["request_token"] != "tok-123" || got["auth_token"] != "tok-456" {
		t.Fatalf("payload mismatch: %v", got)
	}
}

func TestOpen_WrongSecretFails(t *testing.T) {
	env, err := Sign(secretA, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Sign err: %v", err)
	}

	if _, err := Open(secretB, env, 5*time.Minute); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestOpen_ExpiredAfterMaxAge(t *testing.T) {
	base := time.Now().UTC()
	nowFunc = func() time.Time { return base }
	defer func() { nowFunc = time.Now }()

	env, err := Sign(secretA, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Sign err: %v", err)
	}

	// Dentro del maxAge abre bien.
	nowFunc = func() time.Time { return base.Add(4 * time.Minute) }
	if _, err := Open(secretA, env, 5*time.Minute); err != nil {
		t.Fatalf("Open dentro de la ventana err: %v", err)
	}

	// Pasado el maxAge falla Expired aunque la firma sea correcta.
	nowFunc = func() time.Time { return base.Add(6 * time.Minute) }
	if _, err := Open(secretA, env, 5*time.Minute); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestOpen_TamperedPayloadIsBadSignatureNotExpired(t *testing.T) {
	base := time.Now().UTC()
	nowFunc = func() time.Time { return base }
	defer func() { nowFunc = time.Now }()

	env, err := Sign(secretA, map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("Sign err: %v", err)
	}

	parts := strings.Split(env, sep)
	parts[0] = parts[0][:len(parts[0])-2] + "xx"
	tampered := strings.Join(parts, sep)

	nowFunc = func() time.Time { return base.Add(time.Hour) }
	if _, err := Open(secretA, tampered, 5*time.Minute); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature (la firma se chequea antes que la edad)", err)
	}
}

func TestOpen_Malformed(t *testing.T) {
	for _, env := range []string{"", "a.b", "no-dots-at-all", "a.b.c.d"} {
		if _, err := Open(secretA, env, time.Minute); !errors.Is(err, ErrMalformed) {
			t.Fatalf("env %q: err = %v, want ErrMalformed", env, err)
		}
	}
}
