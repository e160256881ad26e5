package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc, err := NewAuthService("unit-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	token, err := svc.GenerateToken(42, "admin", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "admin" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestValidateToken_RejectsWrongSecret(t *testing.T) {
	issuer, _ := NewAuthService("secret-a", time.Hour)
	verifier, _ := NewAuthService("secret-b", time.Hour)

	token, err := issuer.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for token signed with different secret")
	}
}

func TestValidateToken_RejectsTampering(t *testing.T) {
	svc, _ := NewAuthService("unit-test-secret", time.Hour)
	token, err := svc.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, err := svc.ValidateToken(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected validation failure for tampered payload")
	}
}

func TestValidateToken_RejectsUnexpectedAlgorithm(t *testing.T) {
	svc, _ := NewAuthService("unit-test-secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, TokenClaims{UserID: 1, Role: "admin"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for alg=none token")
	}
}

func TestValidateToken_RejectsExpired(t *testing.T) {
	svc, _ := NewAuthService("unit-test-secret", time.Millisecond)
	token, err := svc.GenerateToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected validation failure for expired token")
	}
}

func TestNewAuthService_RequiresSecret(t *testing.T) {
	if _, err := NewAuthService("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewAuthService("secret", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Fatal("expected mismatched password to fail")
	}
}
