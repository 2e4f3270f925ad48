package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/treasurehunt/internal/handler/health"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is returned by operations with nothing else to report.
type StatusResponse struct {
	Status string `json:"status"`
}

// Path parameter carriers for the reflector.
type (
	roundPath struct {
		Round int `path:"round" minimum:"1" maximum:"3"`
	}
	teamPath struct {
		ID string `path:"id"`
	}
	submitDoc struct {
		roundPath
		SubmitRequest
	}
	updateTeamDoc struct {
		teamPath
		AdminTeamUpdateRequest
	}
	roundCapDoc struct {
		roundPath
		AdminRoundCapRequest
	}
)

type operation struct {
	method, path, summary, description string
	req                                any
	resp                               map[int]any
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Treasure Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Team registration, round progression and scoring for the treasure hunt.")

	const bearer = " Requires Bearer token."
	const cookie = " Requires admin_session cookie."

	ops := []operation{
		{http.MethodGet, "/healthz", "Health check",
			"Returns the health status of backend dependencies.", nil,
			map[int]any{http.StatusOK: map[string]health.Result{}, http.StatusServiceUnavailable: map[string]health.Result{}}},

		{http.MethodPost, "/api/auth/register", "Register team",
			"Registers a team and returns its bearer token.", RegisterRequest{},
			map[int]any{http.StatusCreated: RegisterResponse{}, http.StatusBadRequest: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodGet, "/api/team", "Current team",
			"Returns the authenticated team with per-round progress." + bearer, nil,
			map[int]any{http.StatusOK: TeamResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodGet, "/api/rounds/1/links", "Round 1 links",
			"Returns the round 1 links in random order and starts the team's round 1." + bearer, nil,
			map[int]any{http.StatusOK: LinksResponse{}, http.StatusConflict: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodGet, "/api/rounds/{round}/challenge", "Round challenge",
			"Returns the round 2 code challenge or the round 3 cipher." + bearer, roundPath{},
			map[int]any{http.StatusOK: CodeChallengeResponse{}, http.StatusConflict: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/rounds/{round}/hint", "Reveal hint",
			"Reveals the hint for a round. The hint penalty applies once." + bearer, roundPath{},
			map[int]any{http.StatusOK: HintResponse{}, http.StatusConflict: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/rounds/{round}/submit", "Submit answer",
			"Submits linkId, code or plaintext for the round." + bearer, submitDoc{},
			map[int]any{
				http.StatusOK:                  SubmitResponse{},
				http.StatusBadRequest:          ErrorResponse{},
				http.StatusUnauthorized:        ErrorResponse{},
				http.StatusNotFound:            ErrorResponse{},
				http.StatusConflict:            ErrorResponse{},
				http.StatusUnprocessableEntity: ErrorResponse{},
			}},
		{http.MethodGet, "/api/game", "Game state",
			"Returns the open round and each round's qualification slots.", nil,
			map[int]any{http.StatusOK: GameResponse{}}},
		{http.MethodGet, "/api/leaderboard", "Leaderboard",
			"Returns teams ranked by score.", nil,
			map[int]any{http.StatusOK: []LeaderboardEntry{}}},

		{http.MethodPost, "/api/admin/login", "Admin login",
			"Authenticate with email and password. Sets admin_session cookie.", AdminLoginRequest{},
			map[int]any{http.StatusOK: AdminMeResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/admin/logout", "Admin logout",
			"Clears admin session and cookie.", nil,
			map[int]any{http.StatusOK: StatusResponse{}}},
		{http.MethodGet, "/api/admin/me", "Current admin",
			"Returns the currently authenticated admin." + cookie, nil,
			map[int]any{http.StatusOK: AdminMeResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/teams", "List teams",
			"Lists teams, filtered by ?status= and searched by ?q=." + cookie, nil,
			map[int]any{http.StatusOK: []TeamResponse{}, http.StatusBadRequest: ErrorResponse{}, http.StatusUnauthorized: ErrorResponse{}}},
		{http.MethodPost, "/api/admin/teams", "Create team",
			"Creates a team." + cookie, AdminTeamRequest{},
			map[int]any{http.StatusCreated: TeamResponse{}, http.StatusBadRequest: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/teams/{id}", "Get team",
			"Returns one team." + cookie, teamPath{},
			map[int]any{http.StatusOK: TeamResponse{}, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodPut, "/api/admin/teams/{id}", "Update team",
			"Replaces name, members, completed rounds and score." + cookie, updateTeamDoc{},
			map[int]any{http.StatusOK: TeamResponse{}, http.StatusBadRequest: ErrorResponse{}, http.StatusNotFound: ErrorResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodDelete, "/api/admin/teams/{id}", "Delete team",
			"Deletes a team and its activity log." + cookie, teamPath{},
			map[int]any{http.StatusOK: StatusResponse{}, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/teams/{id}/activity", "Team activity",
			"Returns the team, its round summaries and recent activity." + cookie, teamPath{},
			map[int]any{http.StatusOK: AdminActivityResponse{}, http.StatusNotFound: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/game", "Game state",
			"Returns the game state." + cookie, nil,
			map[int]any{http.StatusOK: GameResponse{}}},
		{http.MethodPost, "/api/admin/game/advance", "Advance round",
			"Closes the open round and opens the next one." + cookie, nil,
			map[int]any{http.StatusOK: GameResponse{}, http.StatusConflict: ErrorResponse{}}},
		{http.MethodPut, "/api/admin/game/rounds/{round}", "Set round cap",
			"Changes how many teams may qualify out of a round." + cookie, roundCapDoc{},
			map[int]any{http.StatusOK: GameResponse{}, http.StatusBadRequest: ErrorResponse{}}},
		{http.MethodPost, "/api/admin/game/reset", "Reset game",
			"Reopens round 1 and clears every team's progress." + cookie, nil,
			map[int]any{http.StatusOK: GameResponse{}}},
		{http.MethodGet, "/api/admin/stats", "Statistics",
			"Returns team counts and scores." + cookie, nil,
			map[int]any{http.StatusOK: AdminStatsResponse{}}},
	}

	for _, op := range ops {
		oc, _ := r.NewOperationContext(op.method, op.path)
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.req != nil {
			oc.AddReqStructure(op.req)
		}
		for status, v := range op.resp {
			oc.AddRespStructure(v, openapi.WithHTTPStatus(status))
		}
		_ = r.AddOperation(oc)
	}

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of the team's events. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/admin/feed
	getFeed, _ := r.NewOperationContext(http.MethodGet, "/ws/admin/feed")
	getFeed.SetSummary("Admin live feed")
	getFeed.SetDescription("Upgrades to a WebSocket streaming every hunt event as JSON." + cookie)
	getFeed.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getFeed)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.HandlerFunc {
	return v5emb.New("Treasure Hunt API", "/openapi.json", "/docs").ServeHTTP
}
