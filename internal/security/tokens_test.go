package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndDecode(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	userID, sessionID := "u1", "s1"

	token, exp, err := p.Issue(userID, sessionID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("token empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := p.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != userID || claims.SessionID != sessionID {
		t.Errorf("Decode: got subject=%q session_id=%q, want %q/%q", claims.Subject, claims.SessionID, userID, sessionID)
	}
	if claims.ID == "" {
		t.Error("Decode: jti empty")
	}
}

func TestTokenProvider_DecodeMalformed(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	testCases := []string{"", "not-a-token", "a.b", "a.b.c.d"}
	for _, tok := range testCases {
		if _, err := p.Decode(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Decode(%q): want ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestTokenProvider_DecodeExpired(t *testing.T) {
	p, err := NewTestTokenProviderTTL(-time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProviderTTL: %v", err)
	}
	token, _, err := p.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := p.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode expired token: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenProvider_DecodeWrongSignature(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := p.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	// Flip a character in the signature segment.
	tampered := token[:len(token)-2] + "xx"
	if _, err := p.Decode(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode tampered token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_DecodeWrongIssuer(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	other := NewTokenProvider(signer, pub, "other-issuer", "test-audience", time.Hour)
	token, _, err := other.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", time.Hour)
	if _, err := p.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode wrong-issuer token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_DecodeWrongAudience(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	other := NewTokenProvider(signer, pub, "test-issuer", "other-audience", time.Hour)
	token, _, err := other.Issue("u1", "s1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	p := NewTokenProvider(signer, pub, "test-issuer", "test-audience", time.Hour)
	if _, err := p.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode wrong-audience token: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_RoundTripManyInputs(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	pairs := []struct{ userID, sessionID string }{
		{"u1", "s1"},
		{"customer-42", "c7b8a9d0-1234-5678-9abc-def012345678"},
		{"driver@example.com", "s-with-dash"},
	}
	for _, pair := range pairs {
		token, _, err := p.Issue(pair.userID, pair.sessionID)
		if err != nil {
			t.Fatalf("Issue(%q, %q): %v", pair.userID, pair.sessionID, err)
		}
		claims, err := p.Decode(token)
		if err != nil {
			t.Fatalf("Decode(%q, %q): %v", pair.userID, pair.sessionID, err)
		}
		if claims.Subject != pair.userID || claims.SessionID != pair.sessionID {
			t.Errorf("round trip: got %q/%q, want %q/%q", claims.Subject, claims.SessionID, pair.userID, pair.sessionID)
		}
	}
}
