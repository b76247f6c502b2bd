package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionSchema creates the sessions table. It is safe to run on every start.
const SessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id                 TEXT PRIMARY KEY,
	user_id            TEXT        NOT NULL,
	access_token       TEXT        NOT NULL DEFAULT '',
	refresh_token      TEXT        NOT NULL DEFAULT '',
	access_expires_at  TIMESTAMPTZ NOT NULL,
	refresh_expires_at TIMESTAMPTZ NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS sessions_refresh_expires_at_idx ON sessions (refresh_expires_at);`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Migrate applies SessionSchema.
func (r *SessionRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, SessionSchema); err != nil {
		return fmt.Errorf("migrate sessions: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, access_token, refresh_token,
			access_expires_at, refresh_expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.AccessToken,
		s.RefreshToken,
		s.AccessExpiresAt,
		s.RefreshExpiresAt,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, access_token, refresh_token,
		       access_expires_at, refresh_expires_at, created_at
		FROM sessions
		WHERE id = $1`

	return scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *SessionRepository) UpdateTokens(ctx context.Context, id, access string, accessExpiresAt time.Time, refresh string, refreshExpiresAt time.Time) error {
	// An empty refresh keeps the stored refresh token and its expiry.
	query := `
		UPDATE sessions
		SET    access_token       = $2,
		       access_expires_at  = $3,
		       refresh_token      = CASE WHEN $4::text = '' THEN refresh_token ELSE $4::text END,
		       refresh_expires_at = CASE WHEN $4::text = '' THEN refresh_expires_at ELSE $5::timestamptz END,
		       updated_at         = NOW()
		WHERE  id = $1`

	tag, err := r.pool.Exec(ctx, query, id, access, accessExpiresAt, refresh, refreshExpiresAt)
	if err != nil {
		return fmt.Errorf("update session tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE refresh_expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.AccessToken,
		&s.RefreshToken,
		&s.AccessExpiresAt,
		&s.RefreshExpiresAt,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &s, nil
}
