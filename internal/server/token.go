package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playperu/treasurehunt/internal/hunt"
)

const tokenIssuer = "treasurehunt"

// TeamClaims identify the team a bearer token was issued to.
type TeamClaims struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 team tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (ti *TokenIssuer) Issue(t hunt.Team) (string, error) {
	now := ti.now()
	claims := TeamClaims{
		TeamID:   t.ID,
		TeamName: t.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   t.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify returns the claims of a valid token. Any failure, whether a bad
// signature, an expired token or a missing team id, is hunt.ErrInvalidToken.
func (ti *TokenIssuer) Verify(token string) (TeamClaims, error) {
	var claims TeamClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return ti.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil || claims.TeamID == "" {
		return TeamClaims{}, hunt.ErrInvalidToken
	}
	return claims, nil
}
