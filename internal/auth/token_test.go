package auth

import (
	"testing"
	"time"

	"github.com/iticket/helpdesk/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleHelpdesk)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("token already expired")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != domain.RoleHelpdesk {
		t.Errorf("Role = %q, want helpdesk", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a jti for revocation support")
	}
}

func TestTokenUniqueIDs(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	first, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	c1, err := tm.ParseToken(first)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := tm.ParseToken(second)
	if err != nil {
		t.Fatal(err)
	}
	if c1.ID == c2.ID {
		t.Error("expected distinct jti per issued token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.GenerateToken("user-1", domain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected verification failure with a different secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := &TokenManager{secret: []byte("test-secret"), ttl: -time.Minute}
	token, _, err := tm.GenerateToken("user-1", domain.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	if _, err := tm.ParseToken("not-a-token"); err == nil {
		t.Fatal("expected parse failure")
	}
}
