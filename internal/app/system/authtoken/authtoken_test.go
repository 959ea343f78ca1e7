package authtoken

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	svc, err := New(Config{Secret: "test-secret", Issuer: "dazle", TTL: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	token, err := svc.Issue(Subject{UserID: "abc123", Email: "sam@example.com", Position: "Salesperson"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token does not look like a JWT: %q", token)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != "abc123" {
		t.Errorf("UserID: got %q, want %q", claims.UserID, "abc123")
	}
	if claims.Email != "sam@example.com" {
		t.Errorf("Email: got %q, want %q", claims.Email, "sam@example.com")
	}
	if claims.ID == "" {
		t.Error("expected token id to be set")
	}
}

func TestIssue_RequiresUserID(t *testing.T) {
	svc, _ := New(Config{Secret: "test-secret"})
	if _, err := svc.Issue(Subject{Email: "x@example.com"}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer, _ := New(Config{Secret: "s", TTL: time.Hour, Clock: fixedClock(issuedAt)})
	token, err := issuer.Issue(Subject{UserID: "u1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	later, _ := New(Config{Secret: "s", TTL: time.Hour, Clock: fixedClock(issuedAt.Add(2 * time.Hour))})
	if _, err := later.Verify(token); err == nil {
		t.Fatal("expected expired token to fail verification")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a, _ := New(Config{Secret: "secret-a"})
	b, _ := New(Config{Secret: "secret-b"})

	token, err := a.Issue(Subject{UserID: "u1"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatal("expected verification with a different secret to fail")
	}
}

func TestVerify_Empty(t *testing.T) {
	svc, _ := New(Config{Secret: "s"})
	if _, err := svc.Verify(""); err == nil {
		t.Fatal("expected error for empty token")
	}
}
