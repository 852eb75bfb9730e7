package postgres

import (
	"bytes"
	"errors"
	"testing"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, keySize)
}

func TestNewTokenCipherRejectsBadKeySize(t *testing.T) {
	for _, size := range []int{0, 16, 31, 33, 64} {
		_, err := NewTokenCipher(make([]byte, size))
		if !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("key size %d: expected ErrInvalidKeySize, got %v", size, err)
		}
	}
}

func TestTokenCipherRoundTrip(t *testing.T) {
	c, err := NewTokenCipher(testKey())
	if err != nil {
		t.Fatalf("failed to create cipher: %v", err)
	}

	sealed, err := c.Seal("delegated-access-token")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if sealed == "delegated-access-token" {
		t.Fatal("sealed value must not equal plaintext")
	}

	opened, err := c.Open(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened != "delegated-access-token" {
		t.Errorf("round trip = %q", opened)
	}
}

func TestTokenCipherUniqueNonces(t *testing.T) {
	c, _ := NewTokenCipher(testKey())

	a, _ := c.Seal("same-token")
	b, _ := c.Seal("same-token")
	if a == b {
		t.Error("expected distinct ciphertexts for the same plaintext")
	}
}

func TestTokenCipherWrongKey(t *testing.T) {
	c1, _ := NewTokenCipher(testKey())
	c2, _ := NewTokenCipher(bytes.Repeat([]byte{0x43}, keySize))

	sealed, _ := c1.Seal("token")
	if _, err := c2.Open(sealed); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestTokenCipherRejectsGarbage(t *testing.T) {
	c, _ := NewTokenCipher(testKey())

	if _, err := c.Open("not base64!!"); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed for invalid base64, got %v", err)
	}
	if _, err := c.Open("AAAA"); !errors.Is(err, ErrInvalidBlobSize) {
		t.Errorf("expected ErrInvalidBlobSize for short blob, got %v", err)
	}
}
