package auth

import (
	"errors"
	"testing"

	"github.com/goobits/storefront/internal/config"
	"github.com/goobits/storefront/internal/models"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := NewService(config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1})
	customer := &models.Customer{ID: "cus_1", Email: "jane@example.com"}

	token, expiresAt, err := svc.GenerateSessionToken(customer, "backend-token-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if token == "" || expiresAt.IsZero() {
		t.Fatalf("empty token or expiry")
	}

	claims, err := svc.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.CustomerID != "cus_1" || claims.Email != "jane@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.BackendToken != "backend-token-1" {
		t.Fatalf("backend token lost: %+v", claims)
	}
}

func TestSessionTokenSecretMissing(t *testing.T) {
	svc := NewService(config.JWTConfig{})
	if _, _, err := svc.GenerateSessionToken(&models.Customer{ID: "cus_1"}, "tok"); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected secret missing error, got %v", err)
	}
}

func TestSessionTokenWrongSecretRejected(t *testing.T) {
	issuer := NewService(config.JWTConfig{SecretKey: "secret-a", ExpireHours: 1})
	verifier := NewService(config.JWTConfig{SecretKey: "secret-b", ExpireHours: 1})

	token, _, err := issuer.GenerateSessionToken(&models.Customer{ID: "cus_1"}, "tok")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := verifier.ParseSessionToken(token); err == nil {
		t.Fatalf("expected rejection for wrong secret")
	}
}

func TestSessionTokenGarbageRejected(t *testing.T) {
	svc := NewService(config.JWTConfig{SecretKey: "test-secret"})
	if _, err := svc.ParseSessionToken("not-a-token"); err == nil {
		t.Fatalf("expected parse error")
	}
}
