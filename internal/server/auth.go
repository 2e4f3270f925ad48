package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}

// teamFromToken verifies the token and loads the team it names. A token for
// a deleted team is as invalid as a forged one.
func teamFromToken(r *http.Request, tokens *TokenIssuer, store Store, token string) (hunt.Team, error) {
	claims, err := tokens.Verify(token)
	if err != nil {
		return hunt.Team{}, err
	}
	team, err := store.GetTeam(r.Context(), claims.TeamID)
	if err != nil {
		if errors.Is(err, hunt.ErrNotFound) {
			return hunt.Team{}, hunt.ErrInvalidToken
		}
		return hunt.Team{}, err
	}
	return team, nil
}
