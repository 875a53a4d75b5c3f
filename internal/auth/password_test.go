package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_NeverStoresPlaintext(t *testing.T) {
	h, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h == "" || strings.Contains(h, "correct horse") {
		t.Fatalf("hash must not contain the plaintext: %q", h)
	}
	if !strings.HasPrefix(h, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", h)
	}
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(h, "hunter22") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(h, "hunter23") {
		t.Fatalf("expected non-matching password to fail")
	}
	if CheckPassword("not-a-hash", "hunter22") {
		t.Fatalf("expected malformed hash to fail")
	}
}
