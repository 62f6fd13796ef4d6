package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// ErrSessionNotFound is returned when no refresh token is on record for a user.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists at most one refresh token per user id.
type SessionRepository interface {
	// Put replaces any existing entry for userID.
	Put(ctx context.Context, userID, refreshToken string) error
	// Get returns ErrSessionNotFound when userID has no entry.
	Get(ctx context.Context, userID string) (*domain.SessionEntry, error)
	// Delete removes the entry for userID. Missing entries are not an error.
	Delete(ctx context.Context, userID string) error
}

type sessionRepository struct {
	db DB
}

// NewSessionRepository constructs a Postgres-backed session store.
func NewSessionRepository(db DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Put(ctx context.Context, userID, refreshToken string) error {
	const query = `
        INSERT INTO sessions (user_id, refresh_token)
        VALUES ($1,$2)
        ON CONFLICT (user_id) DO UPDATE SET refresh_token=EXCLUDED.refresh_token, updated_at=NOW()`
	_, err := r.db.Exec(ctx, query, userID, refreshToken)
	return err
}

func (r *sessionRepository) Get(ctx context.Context, userID string) (*domain.SessionEntry, error) {
	const query = `
        SELECT user_id, refresh_token
        FROM sessions WHERE user_id=$1`
	var entry domain.SessionEntry
	if err := r.db.QueryRow(ctx, query, userID).Scan(&entry.UserID, &entry.RefreshToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *sessionRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id=$1`, userID)
	return err
}
