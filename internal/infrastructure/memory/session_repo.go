// Package memory holds in-process implementations of the repositories, used
// for single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
)

type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]domain.Session)}
}

func (r *SessionRepository) Create(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *SessionRepository) Get(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (r *SessionRepository) UpdateTokens(_ context.Context, id, access string, accessExpiresAt time.Time, refresh string, refreshExpiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.AccessToken = access
	s.AccessExpiresAt = accessExpiresAt
	if refresh != "" {
		s.RefreshToken = refresh
		s.RefreshExpiresAt = refreshExpiresAt
	}
	r.sessions[id] = s
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if !now.Before(s.RefreshExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}
