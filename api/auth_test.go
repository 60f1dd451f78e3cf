package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestOpenModeMapsToLocalUser(t *testing.T) {
	auth := NewAuth("")
	user, err := auth.UserFromAuthHeader("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != "local" {
		t.Fatalf("unexpected user: %q", user)
	}
}

func TestUserFromAuthHeaderHS256(t *testing.T) {
	secret := "test-secret"
	token := signedToken(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"iat": time.Now().Add(-time.Minute).Unix(),
	})

	user, err := NewAuth(secret).UserFromAuthHeader("Bearer " + token)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if user != "user-123" {
		t.Fatalf("unexpected user: %q", user)
	}
}

func TestUserFromAuthHeaderMissing(t *testing.T) {
	if _, err := NewAuth("test-secret").UserFromAuthHeader(""); err == nil || err.Error() != "missing authorization header" {
		t.Fatalf("expected missing header error, got %v", err)
	}
}

func TestUserFromAuthHeaderBadPrefix(t *testing.T) {
	if _, err := NewAuth("test-secret").UserFromAuthHeader("Basic abc"); err == nil || err.Error() != "bad auth header" {
		t.Fatalf("expected bad auth header error, got %v", err)
	}
}

func TestUserFromAuthHeaderExpired(t *testing.T) {
	secret := "test-secret"
	token := signedToken(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-5 * time.Minute).Unix(),
	})
	if _, err := NewAuth(secret).UserFromAuthHeader("Bearer " + token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestUserFromAuthHeaderWrongSecret(t *testing.T) {
	token := signedToken(t, "other-secret", jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})
	if _, err := NewAuth("test-secret").UserFromAuthHeader("Bearer " + token); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}

func TestUserFromAuthHeaderMissingSub(t *testing.T) {
	secret := "test-secret"
	token := signedToken(t, secret, jwt.MapClaims{
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})
	if _, err := NewAuth(secret).UserFromAuthHeader("Bearer " + token); err == nil {
		t.Fatal("expected token without sub to be rejected")
	}
}
