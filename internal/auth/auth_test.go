package auth

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidate(t *testing.T) {
	tokens, err := NewTokens("test-secret", WithIssuer("test-issuer"))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	token, expiresAt, err := tokens.Generate("user-42", RoleSeeker)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	identity, err := tokens.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if identity.SubjectID != "user-42" {
		t.Fatalf("unexpected subject: %s", identity.SubjectID)
	}
	if identity.Role != RoleSeeker {
		t.Fatalf("unexpected role: %s", identity.Role)
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	token, _, err := tokens.Generate("user-42", RoleEmployer)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %s", token)
	}
	mutated := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := tokens.ParseAndValidate(mutated); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for mutated payload, got %v", err)
	}

	other, err := NewTokens("different-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := other.ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issued := time.Now().UTC().Add(-14 * 24 * time.Hour)
	past, err := NewTokens("test-secret", WithClock(func() time.Time { return issued }))
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	token, _, err := past.Generate("user-42", RoleSeeker)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	current, err := NewTokens("test-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	if _, err := current.ParseAndValidate(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	tokens, err := NewTokens("test-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := tokens.ParseAndValidate(raw); err != ErrInvalidToken {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", raw, err)
		}
	}
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens("   "); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestParseRole(t *testing.T) {
	if role, err := ParseRole(" Employer "); err != nil || role != RoleEmployer {
		t.Fatalf("ParseRole employer: role=%s err=%v", role, err)
	}
	if role, err := ParseRole("seeker"); err != nil || role != RoleSeeker {
		t.Fatalf("ParseRole seeker: role=%s err=%v", role, err)
	}
	if _, err := ParseRole("admin"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := ContextWithIdentity(t.Context(), Identity{SubjectID: "user-7", Role: RoleSeeker})
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.SubjectID != "user-7" || identity.Role != RoleSeeker {
		t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
	}
	if _, ok := IdentityFromContext(t.Context()); ok {
		t.Fatal("expected no identity on fresh context")
	}
}
