package domain

import (
	"errors"
	"time"
)

var (
	// ErrLoggedOut means there is no usable access token and it could not be
	// refreshed. Callers redirect to the login page.
	ErrLoggedOut       = errors.New("session logged out")
	ErrSessionNotFound = errors.New("session not found")
)

type Session struct {
	ID               string
	UserID           string
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	CreatedAt        time.Time
}

// AccessValid reports whether the access token is present and unexpired at now.
func (s *Session) AccessValid(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.AccessExpiresAt)
}

// CanRefresh reports whether a refresh attempt is worth making at now.
func (s *Session) CanRefresh(now time.Time) bool {
	return s.RefreshToken != "" && now.Before(s.RefreshExpiresAt)
}

// TokenPair is what the API hands back on login and refresh.
type TokenPair struct {
	UserID  string
	Access  string
	Refresh string
}
