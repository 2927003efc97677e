package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashVerifies(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for _, pw := range []string{"pw1", "correct horse battery staple", "ünïcødé", ""} {
		hash, err := h.Hash(pw)
		if err != nil {
			t.Fatalf("Hash(%q): %v", pw, err)
		}
		if !h.Verify(pw, hash) {
			t.Fatalf("Verify(%q, hash) = false, want true", pw)
		}
		if h.Verify(pw+"x", hash) {
			t.Fatalf("Verify(%q, hash of %q) = true, want false", pw+"x", pw)
		}
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("pw1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are equal")
	}
	if !h.Verify("pw1", a) || !h.Verify("pw1", b) {
		t.Fatal("salted hashes do not verify")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for _, hash := range []string{"", "not-a-hash", "$2a$10$short"} {
		if h.Verify("pw1", hash) {
			t.Fatalf("Verify against %q = true, want false", hash)
		}
	}
}

func TestHashRejectsLongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if _, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1)); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("err = %v, want %v", err, ErrPasswordTooLong)
	}
}

func TestNewHasherDefaultCost(t *testing.T) {
	if got := NewHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Fatalf("Cost = %d, want %d", got, bcrypt.DefaultCost)
	}
}
