package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/takasakimo/kirei/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var kind string
	err := scanner.Scan(&s.ID, &s.Token, &kind, &s.ActorID, &s.TenantID, &s.Username, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.ActorKind, err = model.ParseActorKind(kind)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const sessionCols = `id, token, actor_kind, actor_id, tenant_id, username, expires_at, created_at`

// Create persists a new session with a crypto-random 256-bit token and the
// given time-to-live. tenantID must be nil exactly when kind is super_admin;
// the schema enforces this as well.
func (s *SessionStore) Create(kind model.ActorKind, actorID int64, tenantID *int64, username string, ttl time.Duration) (*model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)
	expiresAt := time.Now().UTC().Add(ttl)

	result, err := s.db.Exec(
		`INSERT INTO sessions (token, actor_kind, actor_id, tenant_id, username, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		token, string(kind), actorID, tenantID, username, expiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetByToken returns the session for the given token, or nil if not found.
// Expired sessions are still returned; expiry is the authenticator's call so
// it can tell "expired" apart from "missing".
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token = ?`, token)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

// DeleteByToken removes the session for the given token. Deleting a missing
// token is not an error.
func (s *SessionStore) DeleteByToken(token string) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry. Purely housekeeping; the
// authenticator never trusts a row's presence alone.
func (s *SessionStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// DeleteByTenant revokes every session bound to one tenant, customer and
// admin alike. Used when a salon is deactivated.
func (s *SessionStore) DeleteByTenant(tenantID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return fmt.Errorf("delete sessions by tenant: %w", err)
	}
	return nil
}

// DeleteByActor revokes every session held by one principal.
func (s *SessionStore) DeleteByActor(kind model.ActorKind, actorID int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE actor_kind = ? AND actor_id = ?`, string(kind), actorID)
	if err != nil {
		return fmt.Errorf("delete sessions by actor: %w", err)
	}
	return nil
}
