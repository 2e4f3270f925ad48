package server

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/playperu/treasurehunt/internal/hunt"
)

// LinkItem is one round 1 link. Which one is real is never sent.
type LinkItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LinksResponse is the response for GET /api/rounds/1/links.
type LinksResponse struct {
	Links []LinkItem `json:"links"`
}

// CodeChallengeResponse is the round 2 challenge.
type CodeChallengeResponse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	InitialCode string          `json:"initialCode"`
	TestCases   []hunt.TestCase `json:"testCases"`
}

// CipherChallengeResponse is the round 3 challenge.
type CipherChallengeResponse struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EncryptedMessage string `json:"encryptedMessage"`
	Method           string `json:"method"`
}

// HintResponse is the response for POST /api/rounds/{round}/hint.
type HintResponse struct {
	Hint  string   `json:"hint"`
	Hints []string `json:"hints"`
}

// SubmitRequest is the request body for POST /api/rounds/{round}/submit.
// Only the field for the round is read.
type SubmitRequest = hunt.Submission

// SubmitResponse is the outcome of a submission.
type SubmitResponse = hunt.Result

// roundParam parses the {round} URL parameter.
func roundParam(r *http.Request) (hunt.Round, error) {
	return hunt.ParseRound(chi.URLParam(r, "round"))
}

// startRound records that the team opened the round. Looking at a round
// already completed is allowed.
func startRound(r *http.Request, eval *hunt.Evaluator, round hunt.Round) error {
	err := eval.StartRound(r.Context(), teamFrom(r).ID, round)
	if errors.Is(err, hunt.ErrAlreadyCompleted) {
		return nil
	}
	return err
}

func handleLinks(logger *slog.Logger, store Store, eval *hunt.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := startRound(r, eval, hunt.RoundLinks); err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		clues, err := store.ListClues(r.Context(), hunt.RoundLinks)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		links := make([]LinkItem, 0, len(clues))
		for _, c := range clues {
			links = append(links, LinkItem{ID: c.ID, Title: c.Title})
		}
		rand.Shuffle(len(links), func(i, j int) { links[i], links[j] = links[j], links[i] })

		writeJSON(w, http.StatusOK, LinksResponse{Links: links})
	}
}

func handleChallenge(logger *slog.Logger, eval *hunt.Evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := roundParam(r)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}
		if round == hunt.RoundLinks {
			writeError(w, http.StatusNotFound, "round 1 is played from /api/rounds/1/links")
			return
		}

		if err := startRound(r, eval, round); err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		ch := eval.Challenges()
		if round == hunt.RoundCode {
			writeJSON(w, http.StatusOK, CodeChallengeResponse{
				Title:       ch.Code.Title,
				Description: ch.Code.Description,
				InitialCode: ch.Code.InitialCode,
				TestCases:   ch.Code.TestCases,
			})
			return
		}
		writeJSON(w, http.StatusOK, CipherChallengeResponse{
			Title:            ch.Cipher.Title,
			Description:      ch.Cipher.Description,
			EncryptedMessage: ch.Cipher.Ciphertext,
			Method:           ch.Cipher.Method,
		})
	}
}

func handleHint(logger *slog.Logger, eval *hunt.Evaluator, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := roundParam(r)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		team := teamFrom(r)
		hints, err := eval.RevealHint(r.Context(), team.ID, round)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		notify(events, Event{
			Type:     EventHintUsed,
			TeamID:   team.ID,
			TeamName: team.Name,
			Round:    round,
		})

		resp := HintResponse{Hints: hints}
		if len(hints) > 0 {
			resp.Hint = hints[0]
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleSubmit(logger *slog.Logger, eval *hunt.Evaluator, events Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := roundParam(r)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		var req SubmitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		team := teamFrom(r)
		res, err := eval.Submit(r.Context(), team.ID, round, req)
		if err != nil {
			writeDomainError(w, logger, r, err)
			return
		}

		if res.Accepted {
			logger.Info("round completed",
				"team_id", team.ID,
				"round", int(round),
				"score", res.Score,
				"round_closed", res.RoundClosed,
			)
		}
		ev := Event{
			Type:        EventSubmission,
			TeamID:      team.ID,
			TeamName:    team.Name,
			Round:       round,
			Accepted:    res.Accepted,
			Score:       res.Score,
			TotalScore:  res.TotalScore,
			RoundClosed: res.RoundClosed,
		}
		if res.Accepted {
			ev.Type = EventRoundCompleted
		}
		notify(events, ev)

		writeJSON(w, http.StatusOK, res)
	}
}
