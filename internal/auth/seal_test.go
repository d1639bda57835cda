package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestSealer_RoundTrip(t *testing.T) {
	s := NewSealer("test-seal-secret")

	sealed, err := s.Seal("sk-vendor-key-12345")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == "" || strings.Contains(sealed, "sk-vendor-key") {
		t.Fatalf("ciphertext leaks plaintext: %q", sealed)
	}

	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened != "sk-vendor-key-12345" {
		t.Errorf("round trip mismatch: %q", opened)
	}
}

func TestSealer_EmptyValue(t *testing.T) {
	s := NewSealer("test-seal-secret")

	sealed, err := s.Seal("")
	if err != nil || sealed != "" {
		t.Errorf("empty plaintext should seal to empty, got %q, %v", sealed, err)
	}
	opened, err := s.Open("")
	if err != nil || opened != "" {
		t.Errorf("empty sealed value should open to empty, got %q, %v", opened, err)
	}
}

func TestSealer_NonceVaries(t *testing.T) {
	s := NewSealer("test-seal-secret")

	a, _ := s.Seal("same-value")
	b, _ := s.Seal("same-value")
	if a == b {
		t.Error("sealing the same value twice must not produce identical ciphertext")
	}
}

func TestSealer_TamperDetected(t *testing.T) {
	s := NewSealer("test-seal-secret")

	sealed, _ := s.Seal("secret")
	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0xff
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := s.Open(tampered); !errors.Is(err, ErrSealedValueInvalid) {
		t.Errorf("expected ErrSealedValueInvalid, got %v", err)
	}
}

func TestSealer_WrongKey(t *testing.T) {
	sealed, _ := NewSealer("secret-a").Seal("value")

	if _, err := NewSealer("secret-b").Open(sealed); !errors.Is(err, ErrSealedValueInvalid) {
		t.Errorf("expected ErrSealedValueInvalid, got %v", err)
	}
}

func TestSealer_GarbageInput(t *testing.T) {
	s := NewSealer("test-seal-secret")

	for _, input := range []string{"not base64!!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := s.Open(input); !errors.Is(err, ErrSealedValueInvalid) {
			t.Errorf("input %q: expected ErrSealedValueInvalid, got %v", input, err)
		}
	}
}
