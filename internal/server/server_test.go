package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playperu/treasurehunt/internal/database"
	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/migrations"
)

const (
	testAdminEmail = "admin@treasurehunt.local"
	// bcrypt of "changeme"
	testAdminHash = "$2a$10$trCdqP4npsbw0R1vQxVwXeT1HebzRmP01SXaNGPz1eSAZ7mpcL0Uu"
)

const fixedMissingNumber = `function findMissingNumber(nums) {
  let n = nums.length + 1;
  let expectedSum = n * (n + 1) / 2;
  let actualSum = 0;
  for (let i = 0; i < nums.length; i++) {
    actualSum += nums[i];
  }
  return expectedSum - actualSum;
}`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	router http.Handler
	store  *DocStore
	broker *Broker
	tokens *TokenIssuer
}

func newTestEnv(t *testing.T, caps [hunt.NumRounds]int) *testEnv {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)

	store, err := NewDocStore(ctx, db, WithRoundCaps(caps))
	if err != nil {
		t.Fatalf("init doc store: %v", err)
	}
	admin, err := NewAdminDocStore(ctx, db, testAdminEmail, testAdminHash)
	if err != nil {
		t.Fatalf("init admin store: %v", err)
	}

	env := &testEnv{
		store:  store,
		broker: NewBroker(),
		tokens: NewTokenIssuer("test-secret", time.Hour),
	}
	env.router = NewRouter(slog.Default(), Deps{
		Store:     store,
		Admin:     admin,
		Evaluator: hunt.NewEvaluator(store, hunt.DefaultChallenges()),
		Tokens:    env.tokens,
		Broker:    env.broker,
	}, nil)
	return env
}

type reqOption func(*http.Request)

func withBearer(token string) reqOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookies(cookies []*http.Cookie) reqOption {
	return func(r *http.Request) {
		for _, c := range cookies {
			r.AddCookie(c)
		}
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts ...reqOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, opt := range opts {
		opt(req)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

func (e *testEnv) register(t *testing.T, name string, members ...string) RegisterResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", RegisterRequest{TeamName: name, Members: members})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %q: expected 201, got %d: %s", name, w.Code, w.Body.String())
	}
	return decode[RegisterResponse](t, w)
}

func (e *testEnv) loginAdmin(t *testing.T) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/admin/login", AdminLoginRequest{Email: testAdminEmail, Password: "changeme"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func (e *testEnv) answerLink(t *testing.T) string {
	t.Helper()
	clues, err := e.store.ListClues(context.Background(), hunt.RoundLinks)
	if err != nil {
		t.Fatalf("list clues: %v", err)
	}
	for _, c := range clues {
		if c.IsAnswer {
			return c.ID
		}
	}
	t.Fatal("no answer clue")
	return ""
}

func (e *testEnv) decoyLink(t *testing.T) string {
	t.Helper()
	clues, err := e.store.ListClues(context.Background(), hunt.RoundLinks)
	if err != nil {
		t.Fatalf("list clues: %v", err)
	}
	for _, c := range clues {
		if !c.IsAnswer {
			return c.ID
		}
	}
	t.Fatal("no decoy clue")
	return ""
}

func (e *testEnv) submit(t *testing.T, token string, round int, req SubmitRequest) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, http.MethodPost, fmt.Sprintf("/api/rounds/%d/submit", round), req, withBearer(token))
}

func (e *testEnv) finishRound1(t *testing.T, token string) SubmitResponse {
	t.Helper()
	w := e.submit(t, token, 1, SubmitRequest{LinkID: e.answerLink(t)})
	if w.Code != http.StatusOK {
		t.Fatalf("submit round 1: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	res := decode[SubmitResponse](t, w)
	if !res.Accepted {
		t.Fatalf("round 1 not accepted: %+v", res)
	}
	return res
}
