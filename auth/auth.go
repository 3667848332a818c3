// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrMissingSubject = errors.New("token has no member id")
	ErrInvalidIssuer  = errors.New("invalid session issuer key")
)

// Issuer is stamped into every member token and required when parsing.
const Issuer = "party-pick"

// JoinCodeLength is the number of characters in a party join code.
const JoinCodeLength = 6

// joinCodeAlphabet leaves out I, O, 0 and 1 so codes survive being read aloud.
// 32 symbols divide 256 evenly, so byte%32 has no modulo bias.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJoinCode creates a short random code members type in to join a party
func GenerateJoinCode() (string, error) {
	b := make([]byte, JoinCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate join code: %w", err)
	}

	code := make([]byte, JoinCodeLength)
	for i, v := range b {
		code[i] = joinCodeAlphabet[int(v)%len(joinCodeAlphabet)]
	}
	return string(code), nil
}

// NormalizeJoinCode makes join codes case-insensitive
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateIssuerKey checks the credential a trusted identity service presents
// when asking for member tokens. An empty expected key accepts nothing.
func ValidateIssuerKey(given, expected string) error {
	if expected == "" || !hmac.Equal([]byte(given), []byte(expected)) {
		return ErrInvalidIssuer
	}
	return nil
}

// IssueMemberToken signs a session token binding memberID to the bearer.
// Identity itself is owned elsewhere; the token only carries the id.
func IssueMemberToken(memberID, secret string, ttl time.Duration) (string, time.Time, error) {
	if memberID == "" {
		return "", time.Time{}, ErrMissingSubject
	}

	tokenID, err := GenerateID(12)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		ID:        tokenID,
		Issuer:    Issuer,
		Subject:   memberID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign member token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseMemberToken validates a session token and returns the member id it carries
func ParseMemberToken(tokenString, secret string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
