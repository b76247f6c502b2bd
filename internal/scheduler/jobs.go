package scheduler

import (
	"context"
	"log/slog"
)

// SessionPurger is satisfied by *usecase.SessionUsecase.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// PurgeSessions returns a job that drops sessions whose refresh token expired.
func PurgeSessions(p SessionPurger, logger *slog.Logger) JobFunc {
	return func(ctx context.Context) error {
		n, err := p.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Info("expired sessions purged", "count", n)
		}
		return nil
	}
}
