package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

// SessionRepository is the single place console sessions live. Get returns
// domain.ErrSessionNotFound for unknown ids.
type SessionRepository interface {
	Create(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	// UpdateTokens stores a refreshed token pair. An empty refresh keeps the
	// current refresh token and its expiry.
	UpdateTokens(ctx context.Context, id, access string, accessExpiresAt time.Time, refresh string, refreshExpiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose refresh token expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
