package ebina

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded, non-authoritative identity payload of a bearer
// token: who the token says it belongs to and when it expires. It is
// derived from the token on every change and never persisted on its own.
// Signature verification is the server's responsibility; these values are
// for expiry checks and display only.
type Claims struct {
	Subject     string
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type tokenClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var errTokenUndecodable = errors.New("token claims undecodable")

// DecodeClaims extracts the claims of a bearer token without verifying
// its signature. No network round-trip is involved.
func DecodeClaims(token string) (*Claims, error) {
	parsed := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, parsed); err != nil {
		return nil, errTokenUndecodable
	}

	claims := &Claims{
		Subject:     parsed.Subject,
		DisplayName: parsed.Name,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}

// IsExpired reports whether the token's expiry claim is at or before the
// current time. A token without a decodable expiry is treated as expired:
// the check fails closed.
func IsExpired(token string) bool {
	claims, err := DecodeClaims(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return true
	}
	return !claims.ExpiresAt.After(time.Now())
}
