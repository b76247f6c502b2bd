package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/metrics"
	"github.com/ErlanBelekov/invoice-console/internal/repository"
	"github.com/ErlanBelekov/invoice-console/internal/sessionctx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// refreshLeeway treats tokens that expire this soon as already expired, so a
// token does not lapse while a request is in flight.
const refreshLeeway = 15 * time.Second

// SessionUsecase owns the console session: the identity and the token pair
// used to call the API on the user's behalf.
type SessionUsecase struct {
	sessions   repository.SessionRepository
	auth       repository.AuthGateway
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
	refreshes  singleflight.Group
	now        func() time.Time
}

func NewSessionUsecase(sessions repository.SessionRepository, auth repository.AuthGateway, accessTTL, refreshTTL time.Duration, logger *slog.Logger) *SessionUsecase {
	return &SessionUsecase{
		sessions:   sessions,
		auth:       auth,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger.With("component", "session"),
		now:        time.Now,
	}
}

// Login authenticates against the API and stores a new session.
func (u *SessionUsecase) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	pair, err := u.auth.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	now := u.now()
	s := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           pair.UserID,
		AccessToken:      pair.Access,
		RefreshToken:     pair.Refresh,
		AccessExpiresAt:  tokenExpiry(pair.Access, now.Add(u.accessTTL)),
		RefreshExpiresAt: tokenExpiry(pair.Refresh, now.Add(u.refreshTTL)),
		CreatedAt:        now,
	}
	if err := u.sessions.Create(ctx, s); err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store session: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	u.logger.InfoContext(ctx, "user logged in", "user_id", s.UserID)
	return s, nil
}

type RegisterInput struct {
	Name      string
	Email     string
	Password1 string
	Password2 string
}

// Register checks the passwords locally before creating the account. It does
// not log the user in.
func (u *SessionUsecase) Register(ctx context.Context, input RegisterInput) error {
	if err := domain.ValidatePasswords(input.Password1, input.Password2); err != nil {
		return err
	}
	err := u.auth.Register(ctx, repository.RegisterInput{
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Password1: input.Password1,
		Password2: input.Password2,
	})
	if err != nil {
		return err
	}
	u.logger.InfoContext(ctx, "user registered", "email", input.Email)
	return nil
}

// Logout revokes the refresh token when possible and always removes the
// session.
func (u *SessionUsecase) Logout(ctx context.Context, sessionID string) error {
	s, err := u.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	if s.RefreshToken != "" {
		if err := u.auth.Logout(ctx, s.RefreshToken); err != nil {
			u.logger.WarnContext(ctx, "revoke refresh token failed", "error", err)
		}
	}
	if err := u.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	u.logger.InfoContext(ctx, "user logged out", "user_id", s.UserID)
	return nil
}

// Current loads a session for a request. Sessions that can neither use nor
// refresh their access token are removed and reported as ErrLoggedOut.
func (u *SessionUsecase) Current(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrLoggedOut
	}
	s, err := u.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrLoggedOut
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := u.now()
	if !s.AccessValid(now) && !s.CanRefresh(now) {
		u.drop(ctx, s.ID, "session expired")
		return nil, domain.ErrLoggedOut
	}
	return s, nil
}

// AccessToken returns a usable access token for the session in ctx,
// refreshing it when it has expired. Concurrent callers for the same session
// share one refresh. Any refresh failure clears the session and yields
// ErrLoggedOut.
func (u *SessionUsecase) AccessToken(ctx context.Context) (string, error) {
	cur := sessionctx.FromContext(ctx)
	if cur == nil {
		return "", domain.ErrLoggedOut
	}

	s, err := u.sessions.Get(ctx, cur.ID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "", domain.ErrLoggedOut
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if s.AccessValid(u.now().Add(refreshLeeway)) {
		return s.AccessToken, nil
	}

	// The refresh outlives any single caller's cancellation so the waiters
	// sharing it are not failed by one aborted request.
	v, err, _ := u.refreshes.Do(s.ID, func() (any, error) {
		return u.refresh(context.WithoutCancel(ctx), s.ID)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (u *SessionUsecase) refresh(ctx context.Context, sessionID string) (string, error) {
	s, err := u.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return "", domain.ErrLoggedOut
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	now := u.now()
	if s.AccessValid(now.Add(refreshLeeway)) {
		return s.AccessToken, nil
	}
	if !s.CanRefresh(now) {
		metrics.TokenRefreshTotal.WithLabelValues("no_refresh_token").Inc()
		u.drop(ctx, s.ID, "no usable refresh token")
		return "", domain.ErrLoggedOut
	}

	pair, err := u.auth.Refresh(ctx, s.RefreshToken)
	if err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		u.logger.WarnContext(ctx, "token refresh failed", "user_id", s.UserID, "error", err)
		u.drop(ctx, s.ID, "refresh failed")
		return "", domain.ErrLoggedOut
	}

	accessExp := tokenExpiry(pair.Access, now.Add(u.accessTTL))
	var refreshExp time.Time
	if pair.Refresh != "" {
		refreshExp = tokenExpiry(pair.Refresh, now.Add(u.refreshTTL))
	}
	if err := u.sessions.UpdateTokens(ctx, s.ID, pair.Access, accessExp, pair.Refresh, refreshExp); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", domain.ErrLoggedOut
		}
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	u.logger.DebugContext(ctx, "access token refreshed", "user_id", s.UserID, "rotated", pair.Refresh != "")
	return pair.Access, nil
}

// PurgeExpired removes sessions whose refresh token has lapsed.
func (u *SessionUsecase) PurgeExpired(ctx context.Context) (int, error) {
	n, err := u.sessions.DeleteExpired(ctx, u.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	if n > 0 {
		metrics.SessionsPurgedTotal.Add(float64(n))
	}
	return n, nil
}

func (u *SessionUsecase) drop(ctx context.Context, id, reason string) {
	if err := u.sessions.Delete(ctx, id); err != nil {
		u.logger.ErrorContext(ctx, "delete session failed", "error", err)
		return
	}
	u.logger.InfoContext(ctx, "session cleared", "reason", reason)
}

// tokenExpiry reads exp from a JWT without verifying it; the API stays the
// authority on validity. Opaque or exp-less tokens get fallback.
func tokenExpiry(token string, fallback time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return fallback
	}
	if claims.ExpiresAt == nil {
		return fallback
	}
	return claims.ExpiresAt.Time
}
