package auth

import (
	"testing"
	"time"
)

func TestSessionCodecRoundTrip(t *testing.T) {
	codec := NewSessionCodec("test-secret")

	token, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims := codec.Open(token)
	if claims == nil {
		t.Fatal("expected valid claims")
	}
	if claims.UserID != "u1" {
		t.Errorf("user id = %q, want u1", claims.UserID)
	}
}

func TestSessionCodecRejectsWrongSecret(t *testing.T) {
	token, err := NewSessionCodec("secret-a").Issue("u1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if claims := NewSessionCodec("secret-b").Open(token); claims != nil {
		t.Error("expected nil claims for token signed with a different secret")
	}
}

func TestSessionCodecRejectsExpiredToken(t *testing.T) {
	codec := NewSessionCodecWithTTL("test-secret", -time.Minute)

	token, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if claims := codec.Open(token); claims != nil {
		t.Error("expected nil claims for expired token")
	}
}

func TestSessionCodecRejectsGarbage(t *testing.T) {
	codec := NewSessionCodec("test-secret")

	for _, input := range []string{"", "not-a-jwt", "a.b.c", "eyJhbGciOiJub25lIn0.e30."} {
		if claims := codec.Open(input); claims != nil {
			t.Errorf("expected nil claims for input %q", input)
		}
	}
}

func TestSessionCodecRejectsEmptyUserID(t *testing.T) {
	codec := NewSessionCodec("test-secret")

	token, err := codec.Issue("")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	if claims := codec.Open(token); claims != nil {
		t.Error("expected nil claims for token without a user id")
	}
}
