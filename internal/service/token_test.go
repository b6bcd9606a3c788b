package service

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	token, err := svc.Issue(42, "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ident, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ident.UserID != 42 || ident.Role != "user" {
		t.Fatalf("got identity %+v; want {42 user}", ident)
	}
}

func TestTokenHasNoExpiry(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))

	token, err := svc.Issue(1, "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Tokens stay valid until secret rotation; they must not carry exp.
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if _, ok := claims["exp"]; ok {
		t.Fatalf("token carries an exp claim; expected none")
	}
	if _, ok := claims["iat"]; !ok {
		t.Fatalf("token missing iat claim")
	}
}

func TestTokenRejection(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"))
	other := NewTokenService([]byte("other-secret"))

	valid, err := svc.Issue(7, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// token with a flipped character in the signature
	tampered := []byte(valid)
	i := len(tampered) - 2
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	otherToken, err := other.Issue(7, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// structurally valid but unsigned (alg none, empty signature)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := strings.Split(valid, ".")[1]
	unsigned := header + "." + payload + "."

	cases := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-token"},
		{"empty", ""},
		{"tampered", string(tampered)},
		{"wrong secret", otherToken},
		{"unsigned", unsigned},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Verify(tc.token)
			// every rejection is the same error; callers cannot tell the
			// failure modes apart
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("Verify(%q) = %v; want ErrInvalidToken", tc.name, err)
			}
		})
	}
}

func TestTokenWrongClaimTypes(t *testing.T) {
	secret := []byte("test-secret")
	svc := NewTokenService(secret)

	// properly signed token but with a string id claim
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   "not-a-number",
		"role": "user",
	})
	signed, err := tok.SignedString(secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for bad id claim, got %v", err)
	}
}
