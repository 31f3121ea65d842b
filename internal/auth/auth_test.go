package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	t.Parallel()

	signed, expiresAt, err := GenerateToken("account-123", "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expected future expiry")
	}

	parsed, err := jwt.ParseWithClaims(signed, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		t.Fatalf("get subject: %v", err)
	}
	if subject != "account-123" {
		t.Fatalf("expected subject account-123, got %s", subject)
	}
}

func TestGenerateTokenRequiresSubjectAndSecret(t *testing.T) {
	t.Parallel()

	if _, _, err := GenerateToken("", "secret", time.Hour); err == nil {
		t.Fatal("expected error for empty subject")
	}
	if _, _, err := GenerateToken("account-123", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
