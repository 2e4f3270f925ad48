package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const adminSessionTTL = 7 * 24 * time.Hour

type AdminStore interface {
	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (sessionID string, err error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
}

type adminDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type adminSessionDoc struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"adminId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AdminDocStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewAdminDocStore expects a migrated database. The configured admin is
// created, or has its password hash replaced when the email already exists.
func NewAdminDocStore(ctx context.Context, db *sql.DB, email, passwordHash string) (*AdminDocStore, error) {
	s := &AdminDocStore{db: db, now: time.Now}
	if err := s.ensureAdmin(ctx, email, passwordHash); err != nil {
		return nil, fmt.Errorf("seeding admin: %w", err)
	}
	return s, nil
}

func (s *AdminDocStore) ensureAdmin(ctx context.Context, email, passwordHash string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || passwordHash == "" {
		return errors.New("admin email and password hash are required")
	}

	id := newID()
	if existing, _, err := s.AdminByEmail(ctx, email); err == nil {
		id = existing
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	data, err := json.Marshal(adminDoc{ID: id, Email: email, PasswordHash: passwordHash})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET email = excluded.email, data = excluded.data`,
		id, email, string(data),
	)
	return err
}

func (s *AdminDocStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM admins WHERE email = ?`, email,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	if err != nil {
		return "", "", err
	}
	var a adminDoc
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return "", "", err
	}
	return a.ID, a.PasswordHash, nil
}

func (s *AdminDocStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var a adminDoc
	if err := get(ctx, s.db, "admins", adminID, &a); err != nil {
		return "", err
	}

	// Expired sessions are dropped whenever a new one is created. expires_at
	// holds unix milliseconds.
	now := s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE expires_at <= ?`, now.UnixMilli(),
	); err != nil {
		return "", err
	}

	sess := adminSessionDoc{
		ID:        newID(),
		AdminID:   adminID,
		Email:     a.Email,
		ExpiresAt: now.Add(adminSessionTTL),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, expires_at, data) VALUES (?, ?, jsonb(?))`,
		sess.ID, sess.ExpiresAt.UnixMilli(), string(data),
	)
	return sess.ID, err
}

func (s *AdminDocStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM admin_sessions WHERE id = ?`, sessionID,
	)
	return err
}

func (s *AdminDocStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var as adminSessionDoc
	err := get(ctx, s.db, "admin_sessions", sessionID, &as)
	if errors.Is(err, ErrNotFound) {
		return adminSession{}, errNoAdminSession
	}
	if err != nil {
		return adminSession{}, err
	}
	if !s.now().Before(as.ExpiresAt) {
		return adminSession{}, errNoAdminSession
	}
	return adminSession{AdminID: as.AdminID, Email: as.Email}, nil
}

var _ AdminStore = (*AdminDocStore)(nil)
