package server

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playperu/treasurehunt/internal/hunt"
)

func TestTokenRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("s3cret", time.Hour)
	team := hunt.Team{ID: "team-1", Name: "Code Breakers"}

	token, err := ti.Issue(team)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := ti.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.TeamID != "team-1" || claims.TeamName != "Code Breakers" || claims.Subject != "team-1" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenRejected(t *testing.T) {
	ti := NewTokenIssuer("s3cret", time.Hour)
	team := hunt.Team{ID: "team-1", Name: "Code Breakers"}

	expired := NewTokenIssuer("s3cret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _ := expired.Issue(team)

	otherSecret, _ := NewTokenIssuer("other", time.Hour).Issue(team)

	noTeam, _ := ti.Issue(hunt.Team{})

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, TeamClaims{
		TeamID: "team-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, TeamClaims{
		TeamID:           "team-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	}).SignedString([]byte("s3cret"))

	tests := map[string]string{
		"empty":        "",
		"garbage":      "abc.def.ghi",
		"expired":      expiredToken,
		"other secret": otherSecret,
		"no team id":   noTeam,
		"wrong alg":    hs512,
		"no expiry":    noExpiry,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ti.Verify(token); !errors.Is(err, hunt.ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}
