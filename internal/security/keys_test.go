package security

import (
	"errors"
	"testing"
)

func TestParsePrivateKey_Inline(t *testing.T) {
	signer, err := ParsePrivateKey(testPrivateKeyPEM)
	if err != nil {
		t.Fatalf("ParsePrivateKey: %v", err)
	}
	if signer == nil {
		t.Fatal("ParsePrivateKey returned nil signer")
	}
}

func TestParsePublicKey_Inline(t *testing.T) {
	pub, err := ParsePublicKey(testPublicKeyPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey: %v", err)
	}
	if pub == nil {
		t.Fatal("ParsePublicKey returned nil key")
	}
}

func TestParsePrivateKey_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not pem", "-----BEGIN GARBAGE-----\nabc\n-----END GARBAGE-----"},
		{"public key as private", testPublicKeyPEM},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParsePrivateKey(tc.in); err == nil {
				t.Error("ParsePrivateKey should fail")
			}
		})
	}
}

func TestParsePublicKey_Invalid(t *testing.T) {
	if _, err := ParsePublicKey(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("ParsePublicKey(\"\"): want ErrInvalidKey, got %v", err)
	}
	if _, err := ParsePublicKey(testPrivateKeyPEM); err == nil {
		t.Error("ParsePublicKey with private PEM should fail")
	}
}

func TestLoadPEM_MissingFile(t *testing.T) {
	if _, err := LoadPEM("/nonexistent/path/key.pem"); err == nil {
		t.Error("LoadPEM with missing file should fail")
	}
}
