package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure. Malformed
// tokens, wrong-secret signatures and unsigned tokens are indistinguishable
// to the caller.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the set of claims a verified token resolves to.
type Identity struct {
	UserID int64
	Role   string
}

// TokenService signs and verifies bearer tokens with a process-wide secret.
// The secret is injected once at startup and never mutated, so concurrent
// use needs no locking.
//
// Tokens carry no exp claim: a token stays valid until the secret is
// rotated. Revoking a single token is not possible.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret []byte) *TokenService {
	return &TokenService{secret: secret}
}

// Issue produces a signed token encoding the user id and role.
func (s *TokenService) Issue(userID int64, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and returns the embedded identity.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	id, ok := claims["id"].(float64)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	role, ok := claims["role"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: int64(id), Role: role}, nil
}
