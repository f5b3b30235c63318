package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingActor is returned for a token that verifies but names no actor.
var ErrMissingActor = errors.New("token subject (actor id) is empty")

// IssueActorToken signs an HS256 token whose subject is the actor recorded
// as created_by / posted_by on ledger writes.
func IssueActorToken(actorID, secret string, ttl time.Duration, issuer string) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", ErrMissingActor
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   actorID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseActorToken verifies an HMAC-signed token and returns its actor id.
// Expiry and not-before failures wrap jwt.ErrTokenExpired and
// jwt.ErrTokenNotValidYet.
func ParseActorToken(tokenString, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return "", ErrMissingActor
	}
	return claims.Subject, nil
}
