package passwords_test

import (
	"errors"
	"testing"

	"github.com/brooky/dazle/internal/app/system/passwords"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := passwords.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the plain password")
	}
	if !passwords.Check(hash, "correct horse") {
		t.Error("expected matching password to check")
	}
	if passwords.Check(hash, "wrong horse") {
		t.Error("expected wrong password to fail")
	}
}

func TestHash_TooShort(t *testing.T) {
	if _, err := passwords.Hash("short"); !errors.Is(err, passwords.ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestCheck_EmptyHash(t *testing.T) {
	if passwords.Check("", "anything") {
		t.Error("empty hash must never match")
	}
}
