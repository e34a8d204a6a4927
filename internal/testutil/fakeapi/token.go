package fakeapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/battleship-client/internal/model"
)

// TokenTTL is the lifetime of tokens minted on login and register
const TokenTTL = time.Hour

var signingKey = []byte("fakeapi-signing-key")

// mintToken issues a signed token for the user and records it.
// Callers hold s.mu.
func (s *Server) mintToken(id model.UserID) string {
	issued := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        s.newID("jti-"),
		Subject:   string(id),
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(TokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		// HMAC signing only fails for a key of the wrong type
		panic(err)
	}
	s.tokens[token] = id
	return token
}
