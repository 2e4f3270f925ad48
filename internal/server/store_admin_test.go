package server

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdminDocStoreSessions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	admin, err := NewAdminDocStore(ctx, db, "Admin@TreasureHunt.local", testAdminHash)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	admin.now = func() time.Time { return now }

	id, hash, err := admin.AdminByEmail(ctx, testAdminEmail)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if hash != testAdminHash {
		t.Errorf("hash = %q", hash)
	}

	sessionID, err := admin.CreateAdminSession(ctx, id)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	sess, err := admin.AdminFromSession(ctx, sessionID)
	if err != nil {
		t.Fatalf("session lookup: %v", err)
	}
	if sess.AdminID != id || sess.Email != testAdminEmail {
		t.Errorf("session = %+v", sess)
	}

	now = now.Add(adminSessionTTL + time.Minute)
	if _, err := admin.AdminFromSession(ctx, sessionID); !errors.Is(err, errNoAdminSession) {
		t.Errorf("expired session: got %v", err)
	}
	if _, err := admin.AdminFromSession(ctx, "missing"); !errors.Is(err, errNoAdminSession) {
		t.Errorf("unknown session: got %v", err)
	}
	if _, err := admin.CreateAdminSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("session for unknown admin: got %v", err)
	}
}

func TestAdminDocStoreDropsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	admin, err := NewAdminDocStore(ctx, db, testAdminEmail, testAdminHash)
	if err != nil {
		t.Fatal(err)
	}
	// A whole-second start and a fractional-second cleanup time.
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	admin.now = func() time.Time { return now }
	id, _, _ := admin.AdminByEmail(ctx, testAdminEmail)

	old, err := admin.CreateAdminSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(adminSessionTTL + 500*time.Millisecond)
	if _, err := admin.CreateAdminSession(ctx, id); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_sessions WHERE id = ?`, old).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expired session still stored")
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_sessions`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}
}

func TestAdminDocStoreReseedKeepsID(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	first, err := NewAdminDocStore(ctx, db, testAdminEmail, testAdminHash)
	if err != nil {
		t.Fatal(err)
	}
	id, _, _ := first.AdminByEmail(ctx, testAdminEmail)

	second, err := NewAdminDocStore(ctx, db, testAdminEmail, "$2a$10$replaced")
	if err != nil {
		t.Fatal(err)
	}
	id2, hash, err := second.AdminByEmail(ctx, testAdminEmail)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != id || hash != "$2a$10$replaced" {
		t.Errorf("after reseed id %q hash %q, want id %q and the new hash", id2, hash, id)
	}

	if _, err := NewAdminDocStore(ctx, db, "", testAdminHash); err == nil {
		t.Error("expected error for empty email")
	}
}
